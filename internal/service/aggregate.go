// aggregate.go — вычисление агрегатов отчёта по записям категорий.
// Все функции чистые: одинаковый вход даёт одинаковый выход.
package service

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bigkaa/goartstore/rms-report/internal/domain/model"
)

// DefaultSummaryLimit — предел длины краткого описания в таблице (руны).
const DefaultSummaryLimit = 120

// EllipsisMarker добавляется к обрезанному описанию.
const EllipsisMarker = "…"

// Aggregator — вычислитель агрегатов отчёта.
type Aggregator struct {
	// SummaryLimit — предел длины краткого описания; <= 0 — DefaultSummaryLimit
	SummaryLimit int
}

// Aggregate строит агрегат по записям в порядке реестра.
// Reference и GeneratedAt не заполняются: их задаёт генератор ссылок.
func (a Aggregator) Aggregate(records []model.CategoryRecord) model.ReportAggregate {
	limit := a.SummaryLimit
	if limit <= 0 {
		limit = DefaultSummaryLimit
	}

	agg := model.ReportAggregate{
		StandardsChecked: len(records),
		Rows:             make([]model.TableRow, 0, len(records)),
	}

	var actionable, other []model.EvidencePhoto

	for _, rec := range records {
		switch rec.Status {
		case model.StatusCompliant:
			agg.CompliantCount++
		case model.StatusNonCompliant:
			agg.NonCompliantCount++
		case model.StatusNotApplicable:
			agg.NotApplicableCount++
		}

		agg.Rows = append(agg.Rows, model.TableRow{
			Category:    rec.Category,
			Status:      rec.Status,
			StatusClass: rec.Status.Class(),
			Summary:     Summarize(rec.Note, limit),
			PhotoCount:  len(rec.Photos),
		})

		for _, ph := range rec.Photos {
			ev := model.EvidencePhoto{Category: rec.Category, Status: rec.Status, Photo: ph}
			if rec.Status == model.StatusNonCompliant {
				actionable = append(actionable, ev)
			} else {
				other = append(other, ev)
			}
		}
		agg.PhotoCount += len(rec.Photos)
	}

	agg.ActionsRequired = agg.NonCompliantCount
	agg.OverallStatus = model.OverallCompliant
	if agg.NonCompliantCount > 0 {
		agg.OverallStatus = model.OverallActionRequired
	}

	agg.Evidence = make([]model.EvidencePhoto, 0, len(actionable)+len(other))
	agg.Evidence = append(agg.Evidence, actionable...)
	agg.Evidence = append(agg.Evidence, other...)

	return agg
}

// Summarize возвращает note без изменений, если он не длиннее limit рун.
// Иначе — первые limit рун без хвостовых пробелов и EllipsisMarker.
func Summarize(note string, limit int) string {
	if utf8.RuneCountInString(note) <= limit {
		return note
	}

	cut := 0
	for i := 0; i < limit; i++ {
		_, size := utf8.DecodeRuneInString(note[cut:])
		cut += size
	}

	return strings.TrimRightFunc(note[:cut], unicode.IsSpace) + EllipsisMarker
}
