// source.go — адаптеры источника заявки (Submission Source).
// Источник отдаёт значения полей по имени и список файлов поля.
package service

import (
	"io"
	"mime/multipart"
	"os"
)

// Upload — один файл из заявки.
type Upload struct {
	// Filename — имя файла, присланное клиентом (не доверенное)
	Filename string
	// Open открывает содержимое файла. Вызывающий код закрывает ReadCloser.
	Open func() (io.ReadCloser, error)
}

// Source — источник сырой заявки.
// Отсутствующее поле — пустая строка или пустой список, не ошибка.
type Source interface {
	Value(field string) string
	Files(field string) []Upload
}

// FormSource — источник из разобранной multipart-формы.
type FormSource struct {
	form *multipart.Form
}

// NewFormSource оборачивает multipart.Form. nil допустим.
func NewFormSource(form *multipart.Form) *FormSource {
	return &FormSource{form: form}
}

// Value возвращает первое значение поля.
func (s *FormSource) Value(field string) string {
	if s.form == nil {
		return ""
	}
	if vals := s.form.Value[field]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// Files возвращает файлы поля в порядке отправки.
func (s *FormSource) Files(field string) []Upload {
	if s.form == nil {
		return nil
	}
	headers := s.form.File[field]
	uploads := make([]Upload, 0, len(headers))
	for _, fh := range headers {
		uploads = append(uploads, Upload{
			Filename: fh.Filename,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return uploads
}

// MapSource — источник из готовых значений (офлайн-рендер).
type MapSource struct {
	Fields  map[string]string
	Uploads map[string][]Upload
}

// Value возвращает значение поля.
func (s *MapSource) Value(field string) string {
	return s.Fields[field]
}

// Files возвращает файлы поля.
func (s *MapSource) Files(field string) []Upload {
	return s.Uploads[field]
}

// FileUpload создаёт Upload из локального файла.
// Имя для хранения берётся из пути, санитизация — на стороне Photo Store.
func FileUpload(path string) Upload {
	return Upload{
		Filename: path,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}
