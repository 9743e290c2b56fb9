package domain

import (
	"fmt"
	"strings"
)

// TemplateKind distinguishes label templates from report templates.
type TemplateKind string

const (
	KindLabel  TemplateKind = "label"
	KindReport TemplateKind = "report"
)

// ParseKind validates a template kind.
func ParseKind(s string) (TemplateKind, error) {
	switch k := TemplateKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindLabel, KindReport:
		return k, nil
	default:
		return "", fmt.Errorf("unknown template kind %q", s)
	}
}

// Title returns the capitalized kind name ("Label", "Report").
func (k TemplateKind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// DefaultFilename is the filename pattern used when a template does not define one.
func (k TemplateKind) DefaultFilename() string {
	if k == KindLabel {
		return "label.pdf"
	}
	return "report.pdf"
}

// DefaultPageSize is used for reports that leave PageSize empty.
const DefaultPageSize = "A4"

// Template is a server-defined rendering definition for labels or reports.
type Template struct {
	ID              int64        `json:"pk" yaml:"id" mapstructure:"id"`
	Kind            TemplateKind `json:"kind" yaml:"kind" mapstructure:"kind"`
	Name            string       `json:"name" yaml:"name" mapstructure:"name"`
	Description     string       `json:"description" yaml:"description" mapstructure:"description"`
	ModelType       ModelType    `json:"model_type" yaml:"model_type" mapstructure:"model_type"`
	Template        string       `json:"template" yaml:"template" mapstructure:"template"`
	Filters         string       `json:"filters" yaml:"filters" mapstructure:"filters"`
	FilenamePattern string       `json:"filename_pattern" yaml:"filename_pattern" mapstructure:"filename_pattern"`
	Enabled         bool         `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Revision        int          `json:"revision" yaml:"revision" mapstructure:"revision"`

	// Report options
	PageSize  string `json:"page_size,omitempty" yaml:"page_size" mapstructure:"page_size"`
	Landscape bool   `json:"landscape,omitempty" yaml:"landscape" mapstructure:"landscape"`

	// Label dimensions, in millimetres
	Width  float64 `json:"width,omitempty" yaml:"width" mapstructure:"width"`
	Height float64 `json:"height,omitempty" yaml:"height" mapstructure:"height"`
}

// String mirrors the admin listing format "<name> - <description>".
func (t Template) String() string {
	return fmt.Sprintf("%s - %s", t.Name, t.Description)
}

// Filename returns the configured filename pattern, falling back to the kind default.
func (t Template) Filename() string {
	if strings.TrimSpace(t.FilenamePattern) == "" {
		return t.Kind.DefaultFilename()
	}
	return t.FilenamePattern
}

// ReportSize returns the printable page size, e.g. "A4" or "Letter landscape".
func (t Template) ReportSize(fallback string) string {
	size := t.PageSize
	if size == "" {
		size = fallback
	}
	if size == "" {
		size = DefaultPageSize
	}
	if t.Landscape {
		size += " landscape"
	}
	return size
}

// Validate checks the invariants a template must satisfy before it is stored.
func (t Template) Validate() error {
	verr := NewValidationError()
	if strings.TrimSpace(t.Name) == "" {
		verr.Add("name", "This field may not be blank.")
	}
	if len(t.Name) > 100 {
		verr.Add("name", "Ensure this field has no more than 100 characters.")
	}
	if len(t.Description) > 250 {
		verr.Add("description", "Ensure this field has no more than 250 characters.")
	}
	if t.Kind != KindLabel && t.Kind != KindReport {
		verr.Add("kind", fmt.Sprintf("%q is not a valid choice.", t.Kind))
	}
	if !t.ModelType.Valid() {
		verr.Add("model_type", fmt.Sprintf("%q is not a valid choice.", t.ModelType))
	}
	if strings.TrimSpace(t.Template) == "" {
		verr.Add("template", "No file was submitted.")
	}
	if t.Kind == KindLabel && (t.Width < 0 || t.Height < 0) {
		verr.Add("width", "Label dimensions must be positive.")
	}
	return verr.OrNil()
}

// Snippet is a named template fragment that other templates can include.
type Snippet struct {
	ID          int64  `json:"pk" yaml:"id"`
	Name        string `json:"snippet" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Content     string `json:"content" yaml:"content"`
}

// Asset describes an uploaded file (e.g. a logo) usable from report templates.
type Asset struct {
	Name        string `json:"asset"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
}
