package model

import "time"

// ReportMeta — метаданные готового отчёта. Соответствует содержимому
// attr.json рядом с артефактом в reports/.
type ReportMeta struct {
	// Reference — человекочитаемый идентификатор отчёта
	Reference string `json:"reference"`

	// Artifact — имя файла отчёта в reports/
	Artifact string `json:"artifact"`

	// GeneratedAt — дата и время формирования (UTC)
	GeneratedAt time.Time `json:"generated_at"`

	// PropertyAddress — адрес объекта из заявки
	PropertyAddress string `json:"property_address,omitempty"`

	StandardsChecked  int    `json:"standards_checked"`
	NonCompliantCount int    `json:"non_compliant_count"`
	ActionsRequired   int    `json:"actions_required"`
	OverallStatus     string `json:"overall_status"`
	PhotoCount        int    `json:"photo_count"`

	// PageCount — количество страниц PDF
	PageCount int `json:"page_count"`

	// Size — размер артефакта в байтах
	Size int64 `json:"size"`

	// Checksum — SHA-256 хэш артефакта
	Checksum string `json:"checksum"`
}
