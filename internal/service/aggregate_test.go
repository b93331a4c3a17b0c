package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigkaa/goartstore/rms-report/internal/domain/model"
	"github.com/bigkaa/goartstore/rms-report/internal/domain/registry"
)

func recordsWith(statuses map[string]model.Status, photos map[string]int) []model.CategoryRecord {
	defs := registry.Default().All()
	records := make([]model.CategoryRecord, 0, len(defs))
	for _, def := range defs {
		rec := model.CategoryRecord{Category: def, Status: statuses[def.Key]}
		for i := 0; i < photos[def.Key]; i++ {
			name := def.Key + "_" + string(rune('a'+i)) + ".jpg"
			rec.Photos = append(rec.Photos, model.PhotoRef{
				StoredName:  name,
				CategoryKey: def.Key,
				Reference:   "uploads/" + name,
			})
		}
		records = append(records, rec)
	}
	return records
}

func TestAggregate_AllNotApplicable(t *testing.T) {
	agg := Aggregator{}.Aggregate(recordsWith(nil, nil))

	assert.Equal(t, 14, agg.StandardsChecked)
	assert.Equal(t, 14, agg.NotApplicableCount)
	assert.Zero(t, agg.CompliantCount)
	assert.Zero(t, agg.NonCompliantCount)
	assert.Zero(t, agg.ActionsRequired)
	assert.Zero(t, agg.PhotoCount)
	assert.Equal(t, model.OverallCompliant, agg.OverallStatus)
	assert.Empty(t, agg.Evidence)
}

func TestAggregate_CountsAndEvidenceOrder(t *testing.T) {
	statuses := map[string]model.Status{
		"bathroom": model.StatusCompliant,
		"kitchen":  model.StatusNonCompliant,
		"windows":  model.StatusNonCompliant,
		"locks":    model.StatusCompliant,
	}
	photos := map[string]int{"bathroom": 1, "kitchen": 2, "windows": 1, "heating": 1}

	agg := Aggregator{}.Aggregate(recordsWith(statuses, photos))

	assert.Equal(t, 2, agg.CompliantCount)
	assert.Equal(t, 2, agg.NonCompliantCount)
	assert.Equal(t, 10, agg.NotApplicableCount)
	assert.Equal(t, agg.StandardsChecked,
		agg.CompliantCount+agg.NonCompliantCount+agg.NotApplicableCount)
	assert.Equal(t, agg.NonCompliantCount, agg.ActionsRequired)
	assert.Equal(t, 5, agg.PhotoCount)
	assert.Equal(t, model.OverallActionRequired, agg.OverallStatus)

	require.Len(t, agg.Evidence, 5)
	var keys []string
	for _, ev := range agg.Evidence {
		keys = append(keys, ev.Category.Key)
	}
	// несоответствующие первыми, внутри групп порядок реестра
	assert.Equal(t, []string{"kitchen", "kitchen", "windows", "bathroom", "heating"}, keys)
	assert.Equal(t, "kitchen_a.jpg", agg.Evidence[0].Photo.StoredName)
	assert.Equal(t, "kitchen_b.jpg", agg.Evidence[1].Photo.StoredName)

	require.Len(t, agg.Rows, 14)
	for _, row := range agg.Rows {
		assert.Equal(t, row.Status.Class(), row.StatusClass)
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	statuses := map[string]model.Status{"toilets": model.StatusNonCompliant}
	photos := map[string]int{"toilets": 3, "laundry": 2}
	records := recordsWith(statuses, photos)

	first := Aggregator{}.Aggregate(records)
	second := Aggregator{}.Aggregate(records)
	assert.Equal(t, first, second)
}

func TestAggregate_RowSummary(t *testing.T) {
	records := recordsWith(nil, nil)
	records[0].Note = strings.Repeat("a", 200)
	records[1].Note = "short"

	agg := Aggregator{SummaryLimit: 10}.Aggregate(records)
	assert.Equal(t, "aaaaaaaaaa"+EllipsisMarker, agg.Rows[0].Summary)
	assert.Equal(t, "short", agg.Rows[1].Summary)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name  string
		note  string
		limit int
		want  string
	}{
		{"пустой", "", 120, ""},
		{"ровно предел", strings.Repeat("x", 120), 120, strings.Repeat("x", 120)},
		{"длиннее предела", strings.Repeat("x", 121), 120, strings.Repeat("x", 120) + EllipsisMarker},
		{"хвостовые пробелы", "abcd   efgh", 6, "abcd" + EllipsisMarker},
		{"многобайтовые руны", "ёёёёёё", 3, "ёёё" + EllipsisMarker},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.note, tt.limit))
		})
	}
}

func TestSummarize_Bound(t *testing.T) {
	note := strings.Repeat("word ", 100)
	got := Summarize(note, DefaultSummaryLimit)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), DefaultSummaryLimit+utf8.RuneCountInString(EllipsisMarker))
	assert.True(t, strings.HasSuffix(got, EllipsisMarker))
	assert.True(t, utf8.ValidString(got))
}
