// Package fields merges server-provided print field descriptors with the fixed
// client-side overrides of a print dialog.
package fields

import (
	"strconv"
	"strings"

	"github.com/aretw0/printdesk/pkg/domain"
)

// Override carries the attributes a client wants to force on a field.
// Nil members leave the base attribute untouched.
type Override struct {
	Type     *domain.FieldType
	Label    *string
	Hidden   *bool
	Required *bool
	Value    any
	Filters  map[string]any
}

// Merge returns base with overrides applied. base is never mutated.
//
// For every override key the set attributes of the override win over the base
// descriptor; Filters are merged key-wise. Keys missing from base become new
// descriptors.
func Merge(base domain.FieldSet, overrides map[string]Override) domain.FieldSet {
	out := base.Clone()
	for name, ov := range overrides {
		f, ok := out[name]
		if !ok {
			f = domain.Field{Name: name}
		}
		if ov.Type != nil {
			f.Type = *ov.Type
		}
		if ov.Label != nil {
			f.Label = *ov.Label
		}
		if ov.Hidden != nil {
			f.Hidden = *ov.Hidden
		}
		if ov.Required != nil {
			f.Required = *ov.Required
		}
		if ov.Value != nil {
			f.Value = ov.Value
		}
		if len(ov.Filters) > 0 {
			if f.Filters == nil {
				f.Filters = make(map[string]any, len(ov.Filters))
			}
			for k, v := range ov.Filters {
				f.Filters[k] = v
			}
		}
		out[name] = f
	}
	return out
}

// PrintOverrides builds the overrides a print dialog always applies: templates are
// narrowed to enabled ones of the model type that accept every item, the item list
// is hidden and pre-filled, and for labels the plugin selector only offers active
// label plugins.
func PrintOverrides(kind domain.TemplateKind, modelType domain.ModelType, items []int64, plugin string) map[string]Override {
	hidden := true
	ov := map[string]Override{
		"template": {
			Filters: map[string]any{
				"enabled":    true,
				"model_type": string(modelType),
				"items":      JoinItems(items),
			},
		},
		"items": {
			Hidden: &hidden,
			Value:  append([]int64(nil), items...),
		},
	}
	if kind == domain.KindLabel {
		p := Override{
			Filters: map[string]any{
				"active": true,
				"mixin":  domain.MixinLabels,
			},
		}
		if plugin != "" {
			p.Value = plugin
		}
		ov["plugin"] = p
	}
	return ov
}

// JoinItems renders item ids as a comma separated list.
func JoinItems(items []int64) string {
	parts := make([]string, len(items))
	for i, id := range items {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// Ptr is a helper to build Override members inline.
func Ptr[T any](v T) *T { return &v }
