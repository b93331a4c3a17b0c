// Пакет registry — реестр категорий проверки RMS.
// Реестр строится один раз при старте, после этого только читается.
// Порядок категорий стабилен и определяет порядок таблиц и разделов отчёта.
package registry

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/bigkaa/goartstore/rms-report/internal/domain/model"
)

// Регламент, на который ссылаются категории по умолчанию.
const defaultLegislation = "Residential Tenancies Regulations 2021 (Vic), Schedule 4"

// Registry — упорядоченный неизменяемый набор категорий.
type Registry struct {
	defs  []model.CategoryDefinition
	byKey map[string]int
}

// Spec — исходные данные категории для построения реестра.
// Ключ не задаётся: он выводится из DisplayName.
type Spec struct {
	DisplayName    string
	LegislationRef string
	ChecklistItems []string
}

// DeriveKey выводит ключ категории из отображаемого названия:
// нижний регистр, дефисы считаются пробелами, серии пробелов
// заменяются одним "_". "Vermin-proof bins" → "vermin_proof_bins".
func DeriveKey(displayName string) string {
	lowered := strings.ToLower(displayName)
	fields := strings.FieldsFunc(lowered, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-'
	})
	return strings.Join(fields, "_")
}

// New строит реестр из списка категорий. Ошибка, если название пустое
// или два названия дают одинаковый ключ.
func New(specs []Spec) (*Registry, error) {
	r := &Registry{
		defs:  make([]model.CategoryDefinition, 0, len(specs)),
		byKey: make(map[string]int, len(specs)),
	}

	for _, s := range specs {
		key := DeriveKey(s.DisplayName)
		if key == "" {
			return nil, fmt.Errorf("пустое название категории: %q", s.DisplayName)
		}
		if _, dup := r.byKey[key]; dup {
			return nil, fmt.Errorf("дублирующийся ключ категории %q (%q)", key, s.DisplayName)
		}

		items := make([]string, len(s.ChecklistItems))
		copy(items, s.ChecklistItems)

		r.byKey[key] = len(r.defs)
		r.defs = append(r.defs, model.CategoryDefinition{
			Key:            key,
			DisplayName:    strings.TrimSpace(s.DisplayName),
			LegislationRef: s.LegislationRef,
			ChecklistItems: items,
		})
	}

	return r, nil
}

// MustNew — как New, но паникует при ошибке. Для таблиц, известных при компиляции.
func MustNew(specs []Spec) *Registry {
	r, err := New(specs)
	if err != nil {
		panic("registry: " + err.Error())
	}
	return r
}

// Default возвращает реестр из 14 категорий минимальных стандартов аренды.
func Default() *Registry {
	return MustNew(defaultSpecs)
}

// Len возвращает количество категорий.
func (r *Registry) Len() int {
	return len(r.defs)
}

// All возвращает копию списка категорий в порядке реестра.
// Пункты чек-листа копируются, реестр нельзя изменить через результат.
func (r *Registry) All() []model.CategoryDefinition {
	out := make([]model.CategoryDefinition, len(r.defs))
	for i, def := range r.defs {
		def.ChecklistItems = append([]string(nil), def.ChecklistItems...)
		out[i] = def
	}
	return out
}

// Lookup возвращает категорию по ключу.
func (r *Registry) Lookup(key string) (model.CategoryDefinition, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return model.CategoryDefinition{}, false
	}
	return r.defs[i], true
}

var defaultSpecs = []Spec{
	{
		DisplayName:    "Bathroom",
		LegislationRef: defaultLegislation,
		ChecklistItems: []string{
			"Washbasin with hot and cold water",
			"Shower or bath with hot and cold water",
			"Reasonable water pressure",
		},
	},
	{
		DisplayName:    "Electrical safety",
		LegislationRef: defaultLegislation,
		ChecklistItems: []string{
			"Switchboard fitted with circuit breakers",
			"RCD safety switches fitted",
			"No exposed or damaged wiring",
		},
	},
	{
		DisplayName:    "Lighting",
		LegislationRef: defaultLegislation,
		ChecklistItems: []string{
			"Each room has access to natural light",
			"Artificial lighting in every room and common area",
		},
	},
	{
		DisplayName:    "Kitchen",
		LegislationRef: defaultLegislation,
		ChecklistItems: []string{
			"Dedicated food preparation area",
			"Sink in good working order",
			"Cooktop with at least two burners in good working order",
			"Oven in good working order",
		},
	},
	{
		DisplayName:    "Laundry",
		LegislationRef: defaultLegislation,
		ChecklistItems: []string{
			"Laundry facilities with hot and cold water connection",
		},
	},
	{
		DisplayName:    "Locks",
		LegislationRef: defaultLegislation,
		ChecklistItems: []string{
			"External entry doors lockable from outside with a key",
			"External entry doors openable from inside without a key",
			"Windows capable of being secured",
		},
	},
	{
		DisplayName:    "Heating",
		LegislationRef: defaultLegislation,
		ChecklistItems: []string{
			"Fixed heater in good working order in the main living area",
		},
	},
	{
		DisplayName:    "Mould and damp",
		LegislationRef: defaultLegislation,
		ChecklistItems: []string{
			"Free from mould and damp caused by the building structure",
		},
	},
	{
		DisplayName:    "Structural soundness",
		LegislationRef: defaultLegislation,
		ChecklistItems: []string{
			"Structurally sound and weatherproof",
			"No loose floorboards, stairs or railings",
		},
	},
	{
		DisplayName:    "Toilets",
		LegislationRef: defaultLegislation,
		ChecklistItems: []string{
			"Toilet in good working order connected to sewerage or septic",
			"Toilet located in a separate room or bathroom",
		},
	},
	{
		DisplayName:    "Ventilation",
		LegislationRef: defaultLegislation,
		ChecklistItems: []string{
			"Bathroom, shower, toilet and laundry ventilated to outside",
		},
	},
	{
		DisplayName:    "Vermin-proof bins",
		LegislationRef: defaultLegislation,
		ChecklistItems: []string{
			"Rubbish and recycling bins provided and vermin-proof",
		},
	},
	{
		DisplayName:    "Window coverings",
		LegislationRef: defaultLegislation,
		ChecklistItems: []string{
			"Bedroom and living room windows fitted with curtains or blinds",
			"Coverings block light and provide privacy",
		},
	},
	{
		DisplayName:    "Windows",
		LegislationRef: defaultLegislation,
		ChecklistItems: []string{
			"External windows have coverings or are lockable",
			"Windows in rooms likely to be used as bedrooms can be opened",
		},
	},
}
