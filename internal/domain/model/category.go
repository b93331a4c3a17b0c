// Пакет model — доменные модели сервиса отчётов RMS.
// Категории проверки, статусы соответствия, записи по категориям,
// ссылки на фотографии и агрегаты отчёта.
package model

import (
	"fmt"
	"strings"
)

// CategoryDefinition — неизменяемое описание категории проверки.
// Создаётся один раз при старте процесса и разделяется всеми запросами.
type CategoryDefinition struct {
	// Key — стабильный slug, уникальный в реестре (например, "mould_and_damp")
	Key string
	// DisplayName — отображаемое название ("Mould and damp")
	DisplayName string
	// LegislationRef — ссылка на норму законодательства (опционально)
	LegislationRef string
	// ChecklistItems — пункты чек-листа в порядке отображения (опционально)
	ChecklistItems []string
}

// StatusField возвращает имя поля формы со статусом категории.
func (c CategoryDefinition) StatusField() string { return c.Key + "_status" }

// CommentField возвращает имя поля формы с комментарием категории.
func (c CategoryDefinition) CommentField() string { return c.Key + "_comment" }

// NotesField возвращает альтернативное имя поля комментария.
func (c CategoryDefinition) NotesField() string { return c.Key + "_notes" }

// PhotosField возвращает имя поля формы с фотографиями категории.
func (c CategoryDefinition) PhotosField() string { return c.Key + "_photos" }

// Status — заявленный статус соответствия категории.
// Нулевое значение — StatusNotApplicable.
type Status uint8

const (
	// StatusNotApplicable — категория не применима или статус не указан
	StatusNotApplicable Status = iota
	// StatusCompliant — соответствует требованиям
	StatusCompliant
	// StatusNonCompliant — не соответствует, требуется действие
	StatusNonCompliant
)

// Литералы статусов в полях формы и JSON.
const (
	StatusLiteralCompliant     = "compliant"
	StatusLiteralNonCompliant  = "non_compliant"
	StatusLiteralNotApplicable = "not_applicable"
)

// ParseStatus преобразует литерал из формы в Status.
// Принимаются только три известных литерала (после обрезки пробелов);
// всё остальное, включая пустую строку, — StatusNotApplicable.
func ParseStatus(raw string) Status {
	switch strings.TrimSpace(raw) {
	case StatusLiteralCompliant:
		return StatusCompliant
	case StatusLiteralNonCompliant:
		return StatusNonCompliant
	default:
		return StatusNotApplicable
	}
}

// String возвращает литерал статуса.
func (s Status) String() string {
	switch s {
	case StatusCompliant:
		return StatusLiteralCompliant
	case StatusNonCompliant:
		return StatusLiteralNonCompliant
	case StatusNotApplicable:
		return StatusLiteralNotApplicable
	}
	panic(fmt.Sprintf("model: неизвестный статус %d", uint8(s)))
}

// Label возвращает подпись статуса для отчёта.
func (s Status) Label() string {
	switch s {
	case StatusCompliant:
		return "Compliant"
	case StatusNonCompliant:
		return "Non-compliant"
	case StatusNotApplicable:
		return "N/A"
	}
	panic(fmt.Sprintf("model: неизвестный статус %d", uint8(s)))
}

// Class возвращает CSS-класс статуса: ok, bad, na.
func (s Status) Class() string {
	switch s {
	case StatusCompliant:
		return "ok"
	case StatusNonCompliant:
		return "bad"
	case StatusNotApplicable:
		return "na"
	}
	panic(fmt.Sprintf("model: неизвестный статус %d", uint8(s)))
}
