package report

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/bigkaa/goartstore/rms-report/internal/domain/model"
)

// ReportTemplate — имя шаблона документа отчёта.
const ReportTemplate = "report.html"

// Document — контекст рендеринга отчёта.
type Document struct {
	Title         string
	Reference     string
	GeneratedAt   time.Time
	GeneratedDate string

	Agency          string
	PropertyManager string
	PropertyAddress string

	StandardsChecked   int
	CompliantCount     int
	NonCompliantCount  int
	NotApplicableCount int
	ActionsRequired    int
	PhotoCount         int
	OverallLabel       string
	OverallClass       string

	// LogoURL — пусто, если логотип не настроен
	LogoURL template.URL

	Rows     []Row
	Sections []Section
	Evidence []Photo

	// Base — стратегия разрешения, общая для всех ссылок документа
	Base Base
}

// Row — строка сводной таблицы.
type Row struct {
	Key         string
	Name        string
	StatusLabel string
	StatusClass string
	Summary     string
	PhotoCount  int
}

// Section — подробный раздел категории.
type Section struct {
	Key            string
	Name           string
	LegislationRef string
	ChecklistItems []string
	StatusLabel    string
	StatusClass    string
	Note           string
	Photos         []Photo
}

// Photo — фотография с разрешённой ссылкой.
type Photo struct {
	CategoryName string
	StatusLabel  string
	StatusClass  string
	Name         string
	URL          template.URL
}

// Assembler собирает Document из заявки и агрегата.
type Assembler struct {
	// logoPath — путь логотипа относительно корня статики (опционально)
	logoPath string
}

// NewAssembler создаёт сборщик. logoPath может быть пустым.
func NewAssembler(logoPath string) *Assembler {
	return &Assembler{logoPath: logoPath}
}

// Assemble строит контекст документа. Все ссылки разрешаются через
// один resolver; ссылка вне его префикса — ошибка.
func (a *Assembler) Assemble(sub *model.Submission, agg *model.ReportAggregate, resolver Resolver) (*Document, error) {
	base := resolver.Base()
	resolve := func(storagePath string) (template.URL, error) {
		ref, err := resolver.Resolve(storagePath)
		if err != nil {
			return "", err
		}
		if !strings.HasPrefix(ref, base.Prefix) {
			return "", fmt.Errorf("ссылка %q вне базы %q", ref, base.Prefix)
		}
		// Ссылку построил resolver, схема file:// допустима
		return template.URL(ref), nil //nolint:gosec
	}

	doc := &Document{
		Title:              "Rental Minimum Standards Report",
		Reference:          agg.Reference,
		GeneratedAt:        agg.GeneratedAt,
		GeneratedDate:      agg.GeneratedAt.Format("02 Jan 2006"),
		Agency:             sub.Metadata.Agency,
		PropertyManager:    sub.Metadata.PropertyManager,
		PropertyAddress:    sub.Metadata.PropertyAddress,
		StandardsChecked:   agg.StandardsChecked,
		CompliantCount:     agg.CompliantCount,
		NonCompliantCount:  agg.NonCompliantCount,
		NotApplicableCount: agg.NotApplicableCount,
		ActionsRequired:    agg.ActionsRequired,
		PhotoCount:         agg.PhotoCount,
		OverallLabel:       agg.OverallStatus.Label(),
		OverallClass:       overallClass(agg.OverallStatus),
		Base:               base,
	}

	if a.logoPath != "" {
		logo, err := resolve(a.logoPath)
		if err != nil {
			return nil, fmt.Errorf("логотип: %w", err)
		}
		doc.LogoURL = logo
	}

	doc.Rows = make([]Row, 0, len(agg.Rows))
	for _, row := range agg.Rows {
		doc.Rows = append(doc.Rows, Row{
			Key:         row.Category.Key,
			Name:        row.Category.DisplayName,
			StatusLabel: row.Status.Label(),
			StatusClass: row.StatusClass,
			Summary:     row.Summary,
			PhotoCount:  row.PhotoCount,
		})
	}

	resolved := make(map[string]template.URL, agg.PhotoCount)
	photoOf := func(category model.CategoryDefinition, status model.Status, ph model.PhotoRef) (Photo, error) {
		u, ok := resolved[ph.Reference]
		if !ok {
			var err error
			if u, err = resolve(ph.Reference); err != nil {
				return Photo{}, fmt.Errorf("фото %s: %w", ph.StoredName, err)
			}
			resolved[ph.Reference] = u
		}
		return Photo{
			CategoryName: category.DisplayName,
			StatusLabel:  status.Label(),
			StatusClass:  status.Class(),
			Name:         ph.StoredName,
			URL:          u,
		}, nil
	}

	doc.Sections = make([]Section, 0, len(sub.Records))
	for _, rec := range sub.Records {
		sec := Section{
			Key:            rec.Category.Key,
			Name:           rec.Category.DisplayName,
			LegislationRef: rec.Category.LegislationRef,
			ChecklistItems: rec.Category.ChecklistItems,
			StatusLabel:    rec.Status.Label(),
			StatusClass:    rec.Status.Class(),
			Note:           rec.Note,
		}
		for _, ph := range rec.Photos {
			p, err := photoOf(rec.Category, rec.Status, ph)
			if err != nil {
				return nil, err
			}
			sec.Photos = append(sec.Photos, p)
		}
		doc.Sections = append(doc.Sections, sec)
	}

	doc.Evidence = make([]Photo, 0, len(agg.Evidence))
	for _, ev := range agg.Evidence {
		p, err := photoOf(ev.Category, ev.Status, ev.Photo)
		if err != nil {
			return nil, err
		}
		doc.Evidence = append(doc.Evidence, p)
	}

	return doc, nil
}

func overallClass(o model.Overall) string {
	if o == model.OverallActionRequired {
		return "bad"
	}
	return "ok"
}
