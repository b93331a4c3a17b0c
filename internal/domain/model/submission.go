package model

// PhotoRef — сохранённая фотография категории.
// Создаётся Photo Store при записи файла и больше не изменяется.
type PhotoRef struct {
	// StoredName — санитизированное уникальное имя файла на диске
	StoredName string
	// CategoryKey — ключ категории, к которой относится фото
	CategoryKey string
	// Reference — путь относительно корня статики ("uploads/<StoredName>").
	// Абсолютный URL или file:// URI строит Report Assembler.
	Reference string
	// Size — размер файла в байтах
	Size int64
}

// CategoryRecord — результат проверки одной категории в рамках одной заявки.
type CategoryRecord struct {
	Category CategoryDefinition
	Status   Status
	// Note — комментарий инспектора (может быть пустым)
	Note   string
	Photos []PhotoRef
}

// Metadata — верхнеуровневые поля заявки.
// Свободный текст, без валидации кроме обрезки пробелов.
type Metadata struct {
	Agency          string
	PropertyManager string
	PropertyAddress string
}

// Submission — единица работы одного запуска конвейера.
// Records идут строго в порядке реестра категорий.
type Submission struct {
	Metadata Metadata
	Records  []CategoryRecord
}

// PhotoCount возвращает общее количество фотографий в заявке.
func (s *Submission) PhotoCount() int {
	n := 0
	for _, rec := range s.Records {
		n += len(rec.Photos)
	}
	return n
}
