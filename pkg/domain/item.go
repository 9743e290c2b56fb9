package domain

// Item is an inventory object that a template can be rendered against.
type Item struct {
	ID        int64          `json:"pk" yaml:"id"`
	ModelType ModelType      `json:"model_type" yaml:"model_type"`
	Name      string         `json:"name" yaml:"name"`
	Fields    map[string]any `json:"fields,omitempty" yaml:"fields"`
}

// Context returns the template context contributed by the item itself.
func (i Item) Context() map[string]any {
	ctx := make(map[string]any, len(i.Fields)+3)
	for k, v := range i.Fields {
		ctx[k] = v
	}
	ctx["pk"] = i.ID
	ctx["name"] = i.Name
	ctx["model_type"] = string(i.ModelType)
	ctx[string(i.ModelType)] = i.Fields
	return ctx
}
