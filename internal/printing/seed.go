package printing

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/printdesk/internal/defaults"
	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/aretw0/printdesk/pkg/ports"
)

// SeedDefaults stores every builtin template whose name is not taken yet for its
// kind and returns how many were created. Read-only stores are left untouched.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	builtin, err := defaults.Templates()
	if err != nil {
		return 0, err
	}
	return s.Seed(ctx, builtin)
}

// Seed stores the given templates unless a template with the same kind and name exists.
func (s *Service) Seed(ctx context.Context, templates []domain.Template) (int, error) {
	existing := make(map[domain.TemplateKind]map[string]bool)
	created := 0
	for _, t := range templates {
		names, ok := existing[t.Kind]
		if !ok {
			list, err := s.templates.List(ctx, ports.TemplateQuery{Kind: t.Kind})
			if err != nil {
				return created, fmt.Errorf("failed to list %s templates: %w", t.Kind, err)
			}
			names = make(map[string]bool, len(list))
			for _, e := range list {
				names[e.Name] = true
			}
			existing[t.Kind] = names
		}
		if names[t.Name] {
			continue
		}

		tmpl := t
		tmpl.ID = 0
		tmpl.Revision = 0
		if err := s.templates.Save(ctx, &tmpl); err != nil {
			if errors.Is(err, domain.ErrReadOnly) {
				s.logger.Debug("Template store is read-only, skipping defaults")
				return created, nil
			}
			return created, fmt.Errorf("failed to create template %q: %w", t.Name, err)
		}
		names[t.Name] = true
		created++
		s.logger.Info("Created default template", "kind", t.Kind, "name", t.Name, "id", tmpl.ID)
	}
	return created, nil
}
