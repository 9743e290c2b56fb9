package loam

// TemplateMetadata is the frontmatter of a template document in a template library.
// The document body is the template source.
type TemplateMetadata struct {
	ID              int64   `json:"id" mapstructure:"id"`
	Kind            string  `json:"kind" mapstructure:"kind"`
	Name            string  `json:"name" mapstructure:"name"`
	Description     string  `json:"description" mapstructure:"description"`
	ModelType       string  `json:"model_type" mapstructure:"model_type"`
	Filters         string  `json:"filters" mapstructure:"filters"`
	FilenamePattern string  `json:"filename_pattern" mapstructure:"filename_pattern"`
	Enabled         *bool   `json:"enabled" mapstructure:"enabled"`
	Revision        int     `json:"revision" mapstructure:"revision"`
	PageSize        string  `json:"page_size" mapstructure:"page_size"`
	Landscape       bool    `json:"landscape" mapstructure:"landscape"`
	Width           float64 `json:"width" mapstructure:"width"`
	Height          float64 `json:"height" mapstructure:"height"`

	// Page is either a page size name or an inline layout overriding the fields above.
	Page any `json:"page" mapstructure:"page"`

	// Snippet documents use kind "snippet" and are addressed by Name.
}

// PageLayout is the inline form of the page key.
type PageLayout struct {
	Size      string  `mapstructure:"size"`
	Landscape bool    `mapstructure:"landscape"`
	Width     float64 `mapstructure:"width"`
	Height    float64 `mapstructure:"height"`
}

const kindSnippet = "snippet"
