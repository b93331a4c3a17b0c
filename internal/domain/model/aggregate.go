package model

import (
	"fmt"
	"time"
)

// Overall — итоговый статус отчёта.
type Overall uint8

const (
	// OverallCompliant — нарушений нет
	OverallCompliant Overall = iota
	// OverallActionRequired — есть хотя бы одна несоответствующая категория
	OverallActionRequired
)

// String возвращает машиночитаемое значение итогового статуса.
func (o Overall) String() string {
	switch o {
	case OverallCompliant:
		return "compliant"
	case OverallActionRequired:
		return "action_required"
	}
	panic(fmt.Sprintf("model: неизвестный итоговый статус %d", uint8(o)))
}

// Label возвращает подпись итогового статуса для отчёта.
func (o Overall) Label() string {
	switch o {
	case OverallCompliant:
		return "Compliant"
	case OverallActionRequired:
		return "Action required"
	}
	panic(fmt.Sprintf("model: неизвестный итоговый статус %d", uint8(o)))
}

// TableRow — строка сводной таблицы отчёта.
type TableRow struct {
	Category    CategoryDefinition
	Status      Status
	StatusClass string
	Summary     string
	PhotoCount  int
}

// EvidencePhoto — фотография в разделе доказательств.
type EvidencePhoto struct {
	Category CategoryDefinition
	Status   Status
	Photo    PhotoRef
}

// ReportAggregate — производные данные отчёта.
// Вычисляется один раз на заявку и не хранится отдельно от артефакта.
type ReportAggregate struct {
	// Reference — человекочитаемый идентификатор отчёта
	Reference   string
	GeneratedAt time.Time

	StandardsChecked   int
	CompliantCount     int
	NonCompliantCount  int
	NotApplicableCount int
	// ActionsRequired — сейчас всегда равно NonCompliantCount
	ActionsRequired int
	PhotoCount      int
	OverallStatus   Overall

	// Rows — строки таблицы в порядке реестра
	Rows []TableRow
	// Evidence — фото: сначала несоответствующие категории, затем остальные
	Evidence []EvidencePhoto
}
