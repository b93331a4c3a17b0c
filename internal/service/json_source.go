// json_source.go — заявка в формате JSON для офлайн-рендера.
package service

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/bigkaa/goartstore/rms-report/internal/domain/model"
	"github.com/bigkaa/goartstore/rms-report/internal/domain/registry"
)

// JSONCategory — запись категории в JSON-заявке.
type JSONCategory struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Notes   string `json:"notes"`
	// Photos — пути к локальным файлам, относительные пути считаются
	// от директории JSON-файла
	Photos []string `json:"photos"`
}

// JSONSubmission — заявка в формате JSON.
type JSONSubmission struct {
	Agency          string                  `json:"agency"`
	PropertyManager string                  `json:"property_manager"`
	PropertyAddress string                  `json:"property_address"`
	Categories      map[string]JSONCategory `json:"categories"`
}

// DecodeJSONSubmission читает JSON-заявку.
func DecodeJSONSubmission(r io.Reader) (*JSONSubmission, error) {
	var sub JSONSubmission
	if err := json.NewDecoder(r).Decode(&sub); err != nil {
		return nil, fmt.Errorf("ошибка разбора JSON-заявки: %w", err)
	}
	return &sub, nil
}

// UnknownCategories возвращает отсортированные ключи категорий, которых
// нет в реестре. Парсер их игнорирует так же, как лишние поля формы.
func (s *JSONSubmission) UnknownCategories(reg *registry.Registry) []string {
	var unknown []string
	for key := range s.Categories {
		if _, ok := reg.Lookup(key); !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// Source переводит заявку в имена полей формы.
func (s *JSONSubmission) Source(baseDir string) *MapSource {
	src := &MapSource{
		Fields: map[string]string{
			FieldAgency:          s.Agency,
			FieldPropertyManager: s.PropertyManager,
			FieldPropertyAddress: s.PropertyAddress,
		},
		Uploads: make(map[string][]Upload),
	}

	for key, cat := range s.Categories {
		def := model.CategoryDefinition{Key: key}
		src.Fields[def.StatusField()] = cat.Status
		src.Fields[def.CommentField()] = cat.Comment
		src.Fields[def.NotesField()] = cat.Notes

		for _, p := range cat.Photos {
			if !filepath.IsAbs(p) {
				p = filepath.Join(baseDir, p)
			}
			src.Uploads[def.PhotosField()] = append(src.Uploads[def.PhotosField()], FileUpload(p))
		}
	}

	return src
}
