package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/printdesk/pkg/domain"
)

// ItemSource implements ports.ItemSource over a fixed set of items.
type ItemSource struct {
	mu    sync.RWMutex
	items map[domain.ModelType]map[int64]domain.Item
}

// NewItemSource creates a source holding the given items.
func NewItemSource(items ...domain.Item) *ItemSource {
	s := &ItemSource{items: make(map[domain.ModelType]map[int64]domain.Item)}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// fixtureFile is the on-disk layout of an item fixture file:
//
//	part:
//	  - id: 1
//	    name: Resistor
//	    fields: {IPN: R-10K}
type fixtureFile map[string][]domain.Item

// LoadItems reads item fixtures from a YAML file.
func LoadItems(path string) (*ItemSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	return ParseItems(data)
}

// ParseItems decodes item fixtures from YAML.
func ParseItems(data []byte) (*ItemSource, error) {
	var raw fixtureFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}

	s := NewItemSource()
	for tag, items := range raw {
		mt, err := domain.ParseModelType(tag)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			it.ModelType = mt
			s.Add(it)
		}
	}
	return s, nil
}

// Add stores or replaces an item.
func (s *ItemSource) Add(it domain.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.items[it.ModelType]
	if !ok {
		byID = make(map[int64]domain.Item)
		s.items[it.ModelType] = byID
	}
	byID[it.ID] = it
}

// Items returns the existing items among ids, in ID order.
func (s *ItemSource) Items(ctx context.Context, modelType domain.ModelType, ids []int64) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int64]bool, len(ids))
	var out []domain.Item
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if it, ok := s.items[modelType][id]; ok {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
