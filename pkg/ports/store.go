package ports

import (
	"context"
	"time"

	"github.com/aretw0/printdesk/pkg/domain"
)

// TemplateQuery narrows a template listing. Zero values mean "any".
type TemplateQuery struct {
	Kind      domain.TemplateKind
	ModelType domain.ModelType
	Enabled   *bool
	Search    string
}

// TemplateStore defines the interface for persisting label and report templates.
type TemplateStore interface {
	// List returns templates matching q, ordered by ID.
	List(ctx context.Context, q TemplateQuery) ([]domain.Template, error)

	// Get retrieves a template by kind and ID.
	// Returns domain.ErrTemplateNotFound if it does not exist.
	Get(ctx context.Context, kind domain.TemplateKind, id int64) (*domain.Template, error)

	// Save creates the template when ID is zero (assigning the ID) or replaces it.
	// Every save increments Revision.
	Save(ctx context.Context, t *domain.Template) error

	// Delete removes a template. Returns domain.ErrTemplateNotFound if it does not exist.
	Delete(ctx context.Context, kind domain.TemplateKind, id int64) error
}

// SnippetStore persists named template partials.
type SnippetStore interface {
	Snippets(ctx context.Context) ([]domain.Snippet, error)
	SaveSnippet(ctx context.Context, s *domain.Snippet) error
	DeleteSnippet(ctx context.Context, id int64) error
}

// TemplateWatcher is implemented by template sources that can report changes.
type TemplateWatcher interface {
	// Watch returns a channel receiving the identifier of every changed template.
	Watch(ctx context.Context) (<-chan string, error)
}

// ItemSource resolves printable inventory items.
type ItemSource interface {
	// Items returns the existing items among ids, in ID order. Unknown ids are skipped.
	Items(ctx context.Context, modelType domain.ModelType, ids []int64) ([]domain.Item, error)
}

// OutputStore persists DataOutput records.
type OutputStore interface {
	// Create assigns ID and Created and stores the record.
	Create(ctx context.Context, o *domain.DataOutput) error

	// Get retrieves an output. Returns domain.ErrOutputNotFound if it does not exist.
	Get(ctx context.Context, id int64) (*domain.DataOutput, error)

	// Update replaces an existing record.
	Update(ctx context.Context, o *domain.DataOutput) error

	// List returns all records, newest first.
	List(ctx context.Context) ([]domain.DataOutput, error)

	// Prune removes and returns every record created before the given time.
	Prune(ctx context.Context, before time.Time) ([]domain.DataOutput, error)
}

// MediaStore stores generated outputs and uploaded assets.
type MediaStore interface {
	// Write stores data under dir/name and returns the URL path it is served from.
	Write(ctx context.Context, dir, name string, data []byte) (string, error)

	// Remove deletes the file behind a URL path returned by Write. Missing files are ignored.
	Remove(ctx context.Context, urlPath string) error

	// List describes the files stored under dir.
	List(ctx context.Context, dir string) ([]domain.Asset, error)
}

// PageOptions controls the physical layout of a rendered document.
type PageOptions struct {
	PageSize  string
	Landscape bool
	// Label dimensions in millimetres; zero means "use PageSize".
	Width  float64
	Height float64
}

// Renderer converts HTML pages into one merged PDF document.
type Renderer interface {
	RenderPDF(ctx context.Context, pages [][]byte, opts PageOptions) ([]byte, error)
}
