package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Collects(t *testing.T) {
	v := NewValidationError()
	assert.False(t, v.HasErrors())
	assert.NoError(t, v.OrNil())

	v.Add("items", "This list may not be empty.")
	v.Add("template", `Invalid pk "9" - object does not exist.`)
	v.Add("items", "second")

	require.True(t, v.HasErrors())
	assert.Equal(t, []string{"This list may not be empty.", "second"}, v.Fields["items"])
	assert.Equal(t, `validation failed: items: This list may not be empty.; second, template: Invalid pk "9" - object does not exist.`, v.Error())

	wrapped := fmt.Errorf("print: %w", v.OrNil())
	got, ok := IsValidation(wrapped)
	require.True(t, ok)
	assert.Same(t, v, got)
}

func TestTemplateMissingError(t *testing.T) {
	err := fmt.Errorf("render: %w", &TemplateMissingError{Name: "logo_block"})
	assert.True(t, errors.Is(err, ErrTemplateMissing))
	assert.Contains(t, err.Error(), "Template file 'logo_block' is missing or does not exist")
}

func TestParseModelType(t *testing.T) {
	m, err := ParseModelType(" StockItem ")
	require.NoError(t, err)
	assert.Equal(t, ModelStockItem, m)
	assert.Equal(t, "Stock Item", m.Label())

	_, err = ParseModelType("widget")
	assert.ErrorIs(t, err, ErrInvalidModelType)
}

func TestTemplate_Validate(t *testing.T) {
	tmpl := Template{Kind: KindReport, ModelType: ModelBuild, Name: "Build", Template: "<p/>"}
	assert.NoError(t, tmpl.Validate())
	assert.Equal(t, "report.pdf", tmpl.Filename())
	assert.Equal(t, "A4", tmpl.ReportSize(""))

	tmpl.Landscape = true
	tmpl.PageSize = "Letter"
	assert.Equal(t, "Letter landscape", tmpl.ReportSize("A4"))

	bad := Template{Kind: "poster", ModelType: "widget"}
	err := bad.Validate()
	v, ok := IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, v.Fields, "name")
	assert.Contains(t, v.Fields, "kind")
	assert.Contains(t, v.Fields, "model_type")
	assert.Contains(t, v.Fields, "template")
}

func TestFieldSet_CloneIsDeep(t *testing.T) {
	s := FieldSet{"plugin": {Name: "plugin", Filters: map[string]any{"active": true}}}
	c := s.Clone()
	c["plugin"].Filters["active"] = false
	assert.Equal(t, true, s["plugin"].Filters["active"])
}
