// parser.go — разбор сырой заявки в записи по категориям.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/bigkaa/goartstore/rms-report/internal/domain/model"
	"github.com/bigkaa/goartstore/rms-report/internal/domain/registry"
)

// Имена верхнеуровневых полей заявки.
const (
	FieldAgency          = "agency"
	FieldPropertyManager = "property_manager"
	FieldPropertyAddress = "property_address"
)

// PhotoStore — хранилище фотографий заявки.
// StorePhoto возвращает (nil, nil) для пустого файла.
type PhotoStore interface {
	StorePhoto(categoryKey, originalFilename string, r io.Reader) (*model.PhotoRef, error)
}

// Parser — разбор заявки по реестру категорий.
type Parser struct {
	registry *registry.Registry
	photos   PhotoStore
	logger   *slog.Logger
}

// NewParser создаёт разборщик заявок.
func NewParser(reg *registry.Registry, photos PhotoStore, logger *slog.Logger) *Parser {
	return &Parser{
		registry: reg,
		photos:   photos,
		logger:   logger.With(slog.String("component", "submission_parser")),
	}
}

// Parse проходит реестр по порядку и строит ровно одну запись на категорию.
// Отсутствующие поля — не ошибка. Ошибка записи фото фатальна
// и возвращается как *Error класса KindStorage. Отмена контекста
// возвращается как есть (см. IsCancelled).
func (p *Parser) Parse(ctx context.Context, src Source) (*model.Submission, error) {
	sub := &model.Submission{
		Metadata: model.Metadata{
			Agency:          cleanText(src.Value(FieldAgency)),
			PropertyManager: cleanText(src.Value(FieldPropertyManager)),
			PropertyAddress: cleanText(src.Value(FieldPropertyAddress)),
		},
		Records: make([]model.CategoryRecord, 0, p.registry.Len()),
	}

	for _, def := range p.registry.All() {
		if err := ctx.Err(); err != nil {
			return nil, cancelled("parse", err)
		}

		note := src.Value(def.CommentField())
		if strings.TrimSpace(note) == "" {
			note = src.Value(def.NotesField())
		}

		photos, err := p.storePhotos(def, src.Files(def.PhotosField()))
		if err != nil {
			return nil, err
		}

		sub.Records = append(sub.Records, model.CategoryRecord{
			Category: def,
			Status:   model.ParseStatus(src.Value(def.StatusField())),
			Note:     cleanText(note),
			Photos:   photos,
		})
	}

	p.logger.Debug("Заявка разобрана",
		slog.Int("categories", len(sub.Records)),
		slog.Int("photos", sub.PhotoCount()),
	)

	return sub, nil
}

// storePhotos сохраняет файлы категории. Пустые файлы пропускаются.
func (p *Parser) storePhotos(def model.CategoryDefinition, uploads []Upload) ([]model.PhotoRef, error) {
	var photos []model.PhotoRef

	for _, up := range uploads {
		ref, err := p.storeOne(def.Key, up)
		if err != nil {
			p.logger.Error("Ошибка сохранения фотографии",
				slog.String("category", def.Key),
				slog.String("error", err.Error()),
			)
			return nil, storageError("store_photo", err)
		}
		if ref == nil {
			continue
		}
		photos = append(photos, *ref)
	}

	return photos, nil
}

func (p *Parser) storeOne(categoryKey string, up Upload) (*model.PhotoRef, error) {
	rc, err := up.Open()
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла %q: %w", up.Filename, err)
	}
	defer rc.Close()

	return p.photos.StorePhoto(categoryKey, up.Filename, rc)
}

// cleanText обрезает пробелы по краям. Текст сохраняется как введён:
// экранирование выполняет шаблонизатор.
func cleanText(s string) string {
	return strings.TrimSpace(s)
}
