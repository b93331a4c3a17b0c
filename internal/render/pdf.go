package render

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Ключи свойств, которые финализатор записывает в Info-словарь PDF.
const (
	PropReference       = "Reference"
	PropPropertyAddress = "PropertyAddress"
	PropOverallStatus   = "OverallStatus"
)

var disableConfigDir sync.Once

// Properties — метаданные артефакта.
type Properties struct {
	Reference       string
	PropertyAddress string
	OverallStatus   string
}

func (p Properties) toMap() map[string]string {
	m := make(map[string]string, 3)
	if p.Reference != "" {
		m[PropReference] = p.Reference
	}
	if p.PropertyAddress != "" {
		m[PropPropertyAddress] = p.PropertyAddress
	}
	if p.OverallStatus != "" {
		m[PropOverallStatus] = p.OverallStatus
	}
	return m
}

// PDFFinisher проверяет напечатанный документ, считает страницы
// и записывает метаданные отчёта.
type PDFFinisher struct{}

// NewPDFFinisher создаёт финализатор. pdfcpu работает без
// пользовательской директории конфигурации.
func NewPDFFinisher() *PDFFinisher {
	disableConfigDir.Do(api.DisableConfigDir)
	return &PDFFinisher{}
}

// Finish возвращает итоговый документ и число страниц.
func (f *PDFFinisher) Finish(data []byte, props Properties) ([]byte, int, error) {
	conf := model.NewDefaultConfiguration()

	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return nil, 0, fmt.Errorf("некорректный PDF: %w", err)
	}

	pages, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта страниц: %w", err)
	}
	if pages == 0 {
		return nil, 0, errors.New("PDF не содержит страниц")
	}

	m := props.toMap()
	if len(m) == 0 {
		return data, pages, nil
	}

	var out bytes.Buffer
	if err := api.AddProperties(bytes.NewReader(data), &out, m, conf); err != nil {
		return nil, 0, fmt.Errorf("ошибка записи свойств PDF: %w", err)
	}

	return out.Bytes(), pages, nil
}
