// Package loam exposes a directory of markdown template documents as a read-only
// template store.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/aretw0/printdesk/pkg/ports"
)

// Store adapts a Loam repository to ports.TemplateStore and ports.SnippetStore.
type Store struct {
	Repo *loam.TypedRepository[TemplateMetadata]
}

// New opens the template library at dir in read-only mode.
func New(dir string) (*Store, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	repo, err := loam.Init(absPath, loam.WithReadOnly(true))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return NewFromRepo(loam.NewTypedRepository[TemplateMetadata](repo)), nil
}

// NewFromRepo wraps an existing typed repository.
func NewFromRepo(repo *loam.TypedRepository[TemplateMetadata]) *Store {
	return &Store{Repo: repo}
}

func (s *Store) all(ctx context.Context) ([]domain.Template, []domain.Snippet, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loam list failed: %w", err)
	}

	var (
		templates []domain.Template
		snippets  []domain.Snippet
		seen      = make(map[string]string)
	)
	for _, doc := range docs {
		meta := doc.Data
		if meta.Kind == kindSnippet {
			name := meta.Name
			if name == "" {
				name = trimExtension(doc.ID)
			}
			snippets = append(snippets, domain.Snippet{
				ID:          meta.ID,
				Name:        name,
				Description: meta.Description,
				Content:     doc.Content,
			})
			continue
		}

		t, err := toTemplate(doc.ID, meta, doc.Content)
		if err != nil {
			return nil, nil, err
		}

		key := fmt.Sprintf("%s/%d", t.Kind, t.ID)
		if existing, ok := seen[key]; ok {
			return nil, nil, fmt.Errorf("collision detected: %s template %d is defined in both '%s' and '%s'", t.Kind, t.ID, existing, doc.ID)
		}
		seen[key] = doc.ID
		templates = append(templates, t)
	}

	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	sort.Slice(snippets, func(i, j int) bool { return snippets[i].Name < snippets[j].Name })
	return templates, snippets, nil
}

func toTemplate(docID string, meta TemplateMetadata, content string) (domain.Template, error) {
	kind, err := domain.ParseKind(meta.Kind)
	if err != nil {
		return domain.Template{}, fmt.Errorf("%s: %w", docID, err)
	}
	model, err := domain.ParseModelType(meta.ModelType)
	if err != nil {
		return domain.Template{}, fmt.Errorf("%s: %w", docID, err)
	}
	if meta.ID <= 0 {
		return domain.Template{}, fmt.Errorf("%s: template documents need a positive id", docID)
	}

	name := meta.Name
	if name == "" {
		name = trimExtension(filepath.Base(docID))
	}
	enabled := true
	if meta.Enabled != nil {
		enabled = *meta.Enabled
	}
	rev := meta.Revision
	if rev == 0 {
		rev = 1
	}

	t := domain.Template{
		ID:              meta.ID,
		Kind:            kind,
		Name:            name,
		Description:     meta.Description,
		ModelType:       model,
		Template:        strings.TrimSpace(content),
		Filters:         meta.Filters,
		FilenamePattern: meta.FilenamePattern,
		Enabled:         enabled,
		Revision:        rev,
		PageSize:        meta.PageSize,
		Landscape:       meta.Landscape,
		Width:           meta.Width,
		Height:          meta.Height,
	}
	if err := applyPage(&t, meta.Page); err != nil {
		return domain.Template{}, fmt.Errorf("%s: %w", docID, err)
	}
	return t, nil
}

func applyPage(t *domain.Template, page any) error {
	switch v := page.(type) {
	case nil:
	case string:
		t.PageSize = v
	case map[string]any, map[any]any:
		var layout PageLayout
		if err := mapstructure.Decode(v, &layout); err != nil {
			return fmt.Errorf("failed to decode inline page: %w", err)
		}
		if layout.Size != "" {
			t.PageSize = layout.Size
		}
		t.Landscape = layout.Landscape
		if layout.Width > 0 {
			t.Width = layout.Width
		}
		if layout.Height > 0 {
			t.Height = layout.Height
		}
	default:
		return fmt.Errorf("invalid page definition type: %T", v)
	}
	return nil
}

// List returns templates matching q, ordered by ID.
func (s *Store) List(ctx context.Context, q ports.TemplateQuery) ([]domain.Template, error) {
	templates, _, err := s.all(ctx)
	if err != nil {
		return nil, err
	}

	out := templates[:0]
	for _, t := range templates {
		if q.Kind != "" && t.Kind != q.Kind {
			continue
		}
		if q.ModelType != "" && t.ModelType != q.ModelType {
			continue
		}
		if q.Enabled != nil && t.Enabled != *q.Enabled {
			continue
		}
		if q.Search != "" {
			needle := strings.ToLower(q.Search)
			if !strings.Contains(strings.ToLower(t.Name), needle) && !strings.Contains(strings.ToLower(t.Description), needle) {
				continue
			}
		}
		out = append(out, t)
	}
	return out, nil
}

// Get retrieves a template by kind and ID.
func (s *Store) Get(ctx context.Context, kind domain.TemplateKind, id int64) (*domain.Template, error) {
	templates, _, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range templates {
		if t.Kind == kind && t.ID == id {
			return &t, nil
		}
	}
	return nil, domain.ErrTemplateNotFound
}

// Save is not supported: the library is edited on disk.
func (s *Store) Save(ctx context.Context, t *domain.Template) error {
	return domain.ErrReadOnly
}

// Delete is not supported.
func (s *Store) Delete(ctx context.Context, kind domain.TemplateKind, id int64) error {
	return domain.ErrReadOnly
}

// Snippets returns the snippet documents of the library.
func (s *Store) Snippets(ctx context.Context) ([]domain.Snippet, error) {
	_, snippets, err := s.all(ctx)
	return snippets, err
}

// SaveSnippet is not supported.
func (s *Store) SaveSnippet(ctx context.Context, sn *domain.Snippet) error {
	return domain.ErrReadOnly
}

// DeleteSnippet is not supported.
func (s *Store) DeleteSnippet(ctx context.Context, id int64) error {
	return domain.ErrReadOnly
}

// Watch implements ports.TemplateWatcher.
func (s *Store) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
