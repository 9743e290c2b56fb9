package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/aretw0/printdesk/pkg/ports"
)

// TemplateStore implements ports.TemplateStore and ports.SnippetStore in memory.
// Safe for concurrent use.
type TemplateStore struct {
	mu        sync.RWMutex
	next      int64
	templates map[domain.TemplateKind]map[int64]domain.Template
	snippets  map[int64]domain.Snippet
	nextSnip  int64
}

// NewTemplateStore creates an empty template store.
func NewTemplateStore() *TemplateStore {
	return &TemplateStore{
		templates: map[domain.TemplateKind]map[int64]domain.Template{
			domain.KindLabel:  {},
			domain.KindReport: {},
		},
		snippets: make(map[int64]domain.Snippet),
	}
}

// List returns templates matching q, ordered by ID.
func (s *TemplateStore) List(ctx context.Context, q ports.TemplateQuery) ([]domain.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Template
	for kind, byID := range s.templates {
		if q.Kind != "" && q.Kind != kind {
			continue
		}
		for _, t := range byID {
			if matchQuery(t, q) {
				out = append(out, t)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func matchQuery(t domain.Template, q ports.TemplateQuery) bool {
	if q.ModelType != "" && t.ModelType != q.ModelType {
		return false
	}
	if q.Enabled != nil && t.Enabled != *q.Enabled {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(t.Name), needle) && !strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	return true
}

// Get retrieves a template by kind and ID.
func (s *TemplateStore) Get(ctx context.Context, kind domain.TemplateKind, id int64) (*domain.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[kind][id]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	return &t, nil
}

// Save creates or replaces a template, bumping its revision.
// IDs are unique across kinds.
func (s *TemplateStore) Save(ctx context.Context, t *domain.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.templates[t.Kind]
	if !ok {
		return domain.FieldError("kind", "Invalid template kind.")
	}
	if t.ID == 0 {
		s.next++
		t.ID = s.next
		t.Revision = 0
	} else {
		prev, exists := byID[t.ID]
		if !exists {
			return domain.ErrTemplateNotFound
		}
		t.Revision = prev.Revision
	}
	t.Revision++
	byID[t.ID] = *t
	return nil
}

// Delete removes a template.
func (s *TemplateStore) Delete(ctx context.Context, kind domain.TemplateKind, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[kind][id]; !ok {
		return domain.ErrTemplateNotFound
	}
	delete(s.templates[kind], id)
	return nil
}

// Snippets returns all snippets ordered by name.
func (s *TemplateStore) Snippets(ctx context.Context) ([]domain.Snippet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Snippet, 0, len(s.snippets))
	for _, sn := range s.snippets {
		out = append(out, sn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SaveSnippet creates or replaces a snippet. Names are unique.
func (s *TemplateStore) SaveSnippet(ctx context.Context, sn *domain.Snippet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.snippets {
		if existing.Name == sn.Name && id != sn.ID {
			return domain.FieldError("snippet", "Snippet with this name already exists.")
		}
	}
	if sn.ID == 0 {
		s.nextSnip++
		sn.ID = s.nextSnip
	}
	s.snippets[sn.ID] = *sn
	return nil
}

// DeleteSnippet removes a snippet.
func (s *TemplateStore) DeleteSnippet(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snippets[id]; !ok {
		return domain.ErrSnippetNotFound
	}
	delete(s.snippets, id)
	return nil
}

// OutputStore implements ports.OutputStore in memory.
type OutputStore struct {
	mu   sync.RWMutex
	next int64
	data map[int64]domain.DataOutput
}

// NewOutputStore creates an empty output store.
func NewOutputStore() *OutputStore {
	return &OutputStore{data: make(map[int64]domain.DataOutput)}
}

// Create assigns an ID and stores the record.
func (s *OutputStore) Create(ctx context.Context, o *domain.DataOutput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	o.ID = s.next
	if o.Created.IsZero() {
		o.Created = time.Now().UTC()
	}
	s.data[o.ID] = copyOutput(*o)
	return nil
}

// Get retrieves a record.
func (s *OutputStore) Get(ctx context.Context, id int64) (*domain.DataOutput, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.data[id]
	if !ok {
		return nil, domain.ErrOutputNotFound
	}
	o = copyOutput(o)
	return &o, nil
}

// Update replaces an existing record.
func (s *OutputStore) Update(ctx context.Context, o *domain.DataOutput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[o.ID]; !ok {
		return domain.ErrOutputNotFound
	}
	s.data[o.ID] = copyOutput(*o)
	return nil
}

// List returns all records, newest first.
func (s *OutputStore) List(ctx context.Context) ([]domain.DataOutput, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.DataOutput, 0, len(s.data))
	for _, o := range s.data {
		out = append(out, copyOutput(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID > out[j].ID
		}
		return out[i].Created.After(out[j].Created)
	})
	return out, nil
}

// Prune removes every record created before the given time.
func (s *OutputStore) Prune(ctx context.Context, before time.Time) ([]domain.DataOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []domain.DataOutput
	for id, o := range s.data {
		if o.Created.Before(before) {
			removed = append(removed, o)
			delete(s.data, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].ID < removed[j].ID })
	return removed, nil
}

func copyOutput(o domain.DataOutput) domain.DataOutput {
	o.Errors = append([]string(nil), o.Errors...)
	return o
}
