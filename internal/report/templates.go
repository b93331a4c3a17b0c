package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/bigkaa/goartstore/rms-report/internal/domain/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultLogo — встроенный логотип отчёта.
//
//go:embed assets/logo.svg
var DefaultLogo []byte

// Имена шаблонов страниц.
const (
	FormTemplate   = "form.html"
	ResultTemplate = "result.html"
	ErrorTemplate  = "error.html"
)

// Templates — шаблонизатор документов на html/template.
type Templates struct {
	tmpl *template.Template
}

// LoadTemplates разбирает встроенные шаблоны.
func LoadTemplates() (*Templates, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора шаблонов: %w", err)
	}
	return &Templates{tmpl: tmpl}, nil
}

// Render выполняет шаблон name и возвращает разметку.
func (t *Templates) Render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("ошибка выполнения шаблона %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// FormPage — контекст страницы формы инспекции.
type FormPage struct {
	GeneratedDate string
	Categories    []model.CategoryDefinition
	Compliant     string
	NonCompliant  string
	NotApplicable string
}

// NewFormPage заполняет литералы статусов для радиокнопок.
func NewFormPage(categories []model.CategoryDefinition, now time.Time) FormPage {
	return FormPage{
		GeneratedDate: now.Format("02 Jan 2006"),
		Categories:    categories,
		Compliant:     model.StatusLiteralCompliant,
		NonCompliant:  model.StatusLiteralNonCompliant,
		NotApplicable: model.StatusLiteralNotApplicable,
	}
}

// ResultPage — контекст страницы результата.
type ResultPage struct {
	Reference         string
	StandardsChecked  int
	NonCompliantCount int
	OverallLabel      string
	DownloadURL       string
}

// ErrorPage — контекст страницы ошибки.
type ErrorPage struct {
	Message string
}
