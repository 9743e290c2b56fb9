package domain

// FieldType is the kind of input a print dialog renders for a field.
type FieldType string

const (
	FieldInteger FieldType = "integer"
	FieldString  FieldType = "string"
	FieldBoolean FieldType = "boolean"
	FieldRelated FieldType = "related field"
	FieldChoice  FieldType = "choice"
	FieldList    FieldType = "list"
)

// Choice is one allowed value of a choice field.
type Choice struct {
	Value       any    `json:"value"`
	DisplayName string `json:"display_name"`
}

// Field describes one input of a print dialog.
type Field struct {
	Name     string         `json:"name"`
	Label    string         `json:"label,omitempty"`
	HelpText string         `json:"help_text,omitempty"`
	Type     FieldType      `json:"type"`
	Required bool           `json:"required"`
	Hidden   bool           `json:"hidden,omitempty"`
	ReadOnly bool           `json:"read_only,omitempty"`
	Default  any            `json:"default,omitempty"`
	Value    any            `json:"value,omitempty"`
	Model    string         `json:"model,omitempty"`
	Filters  map[string]any `json:"filters,omitempty"`
	Choices  []Choice       `json:"choices,omitempty"`
}

// Clone returns a deep copy of the descriptor's map and slice members.
func (f Field) Clone() Field {
	out := f
	if f.Filters != nil {
		out.Filters = make(map[string]any, len(f.Filters))
		for k, v := range f.Filters {
			out.Filters[k] = v
		}
	}
	if f.Choices != nil {
		out.Choices = append([]Choice(nil), f.Choices...)
	}
	return out
}

// FieldSet maps field names to their descriptors.
type FieldSet map[string]Field

// Clone returns a deep copy of the set.
func (s FieldSet) Clone() FieldSet {
	out := make(FieldSet, len(s))
	for k, f := range s {
		out[k] = f.Clone()
	}
	return out
}
