package printing

import (
	"context"
	"fmt"

	"github.com/aretw0/printdesk/internal/plugins"
	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/aretw0/printdesk/pkg/filters"
	"github.com/aretw0/printdesk/pkg/ports"
)

// TemplateFilter narrows a template listing.
type TemplateFilter struct {
	ModelType domain.ModelType
	// Items keeps only templates whose filters accept every listed item. It is
	// only applied together with ModelType.
	Items   []int64
	Enabled *bool
	Search  string
}

// Templates lists templates of one kind.
func (s *Service) Templates(ctx context.Context, kind domain.TemplateKind, f TemplateFilter) ([]domain.Template, error) {
	list, err := s.templates.List(ctx, ports.TemplateQuery{
		Kind:      kind,
		ModelType: f.ModelType,
		Enabled:   f.Enabled,
		Search:    f.Search,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s templates: %w", kind, err)
	}
	if f.ModelType == "" || len(f.Items) == 0 {
		return list, nil
	}

	items, err := s.items.Items(ctx, f.ModelType, f.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve items: %w", err)
	}

	out := list[:0]
	for _, t := range list {
		if t.ModelType != f.ModelType {
			continue
		}
		pairs, err := filters.Parse(t.Filters)
		if err != nil {
			s.logger.Warn("Skipping template with invalid filters", "template", t.ID, "err", err)
			continue
		}
		ok := true
		for _, it := range items {
			if !filters.Match(it, pairs) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// Template returns one template.
func (s *Service) Template(ctx context.Context, kind domain.TemplateKind, id int64) (*domain.Template, error) {
	return s.templates.Get(ctx, kind, id)
}

// CreateTemplate validates and stores a new template.
func (s *Service) CreateTemplate(ctx context.Context, t *domain.Template) error {
	t.ID = 0
	t.Revision = 0
	if err := s.validateTemplate(t); err != nil {
		return err
	}
	return s.templates.Save(ctx, t)
}

// UpdateTemplate replaces an existing template, bumping its revision.
func (s *Service) UpdateTemplate(ctx context.Context, t *domain.Template) error {
	current, err := s.templates.Get(ctx, t.Kind, t.ID)
	if err != nil {
		return err
	}
	t.Revision = current.Revision
	if err := s.validateTemplate(t); err != nil {
		return err
	}
	return s.templates.Save(ctx, t)
}

// DeleteTemplate removes a template.
func (s *Service) DeleteTemplate(ctx context.Context, kind domain.TemplateKind, id int64) error {
	return s.templates.Delete(ctx, kind, id)
}

func (s *Service) validateTemplate(t *domain.Template) error {
	verr := domain.NewValidationError()
	if err := t.Validate(); err != nil {
		if v, ok := domain.IsValidation(err); ok {
			verr = v
		} else {
			return err
		}
	}
	if err := filters.Validate(t.Filters, nil); err != nil {
		verr.Add("filters", err.Error())
	}
	if !verr.HasErrors() {
		if _, err := s.engine.Compile(*t, s.snippetList()); err != nil {
			verr.Add("template", err.Error())
		}
	}
	return verr.OrNil()
}

func (s *Service) snippetList() []domain.Snippet {
	if s.snippets == nil {
		return nil
	}
	list, err := s.snippets.Snippets(context.Background())
	if err != nil {
		s.logger.Warn("Failed to load snippets", "err", err)
		return nil
	}
	return list
}

// Snippets lists the stored template snippets.
func (s *Service) Snippets(ctx context.Context) ([]domain.Snippet, error) {
	if s.snippets == nil {
		return nil, nil
	}
	return s.snippets.Snippets(ctx)
}

// CreateSnippet stores a new snippet.
func (s *Service) CreateSnippet(ctx context.Context, sn *domain.Snippet) error {
	if s.snippets == nil {
		return domain.ErrReadOnly
	}
	if sn.Name == "" {
		return domain.FieldError("snippet", "This field may not be blank.")
	}
	sn.ID = 0
	return s.snippets.SaveSnippet(ctx, sn)
}

// DeleteSnippet removes a snippet.
func (s *Service) DeleteSnippet(ctx context.Context, id int64) error {
	if s.snippets == nil {
		return domain.ErrReadOnly
	}
	return s.snippets.DeleteSnippet(ctx, id)
}

// Assets lists the uploaded report assets.
func (s *Service) Assets(ctx context.Context) ([]domain.Asset, error) {
	return s.media.List(ctx, AssetDir)
}

// UploadAsset stores a report asset and returns its media URL.
func (s *Service) UploadAsset(ctx context.Context, name string, data []byte) (string, error) {
	if name == "" {
		return "", domain.FieldError("asset", "No file was submitted.")
	}
	return s.media.Write(ctx, AssetDir, name, data)
}

// Fields describes the inputs of a print dialog. For labels the fields of the
// selected plugin (the default plugin when pluginKey is empty) are appended.
// An unknown plugin key yields only the base fields.
func (s *Service) Fields(ctx context.Context, kind domain.TemplateKind, pluginKey string) (domain.FieldSet, error) {
	set := domain.FieldSet{
		"template": {
			Name:     "template",
			Label:    "Template",
			HelpText: fmt.Sprintf("Select %s template", kind),
			Type:     domain.FieldRelated,
			Required: true,
			Model:    string(kind) + "template",
		},
		"items": {
			Name:     "items",
			Label:    "Items",
			HelpText: "List of items to print",
			Type:     domain.FieldList,
			Required: true,
		},
	}
	if kind != domain.KindLabel {
		return set, nil
	}

	set["plugin"] = domain.Field{
		Name:     "plugin",
		Label:    "Plugin",
		HelpText: "Select plugin to use for label printing",
		Type:     domain.FieldRelated,
		Model:    "pluginconfig",
		Default:  s.defaultPlugin,
	}

	key := pluginKey
	if key == "" {
		key = s.defaultPlugin
	}
	p, _, err := s.registry.Get(key)
	if err != nil {
		return set, nil
	}
	printer, ok := p.(plugins.LabelPrinter)
	if !ok {
		return set, nil
	}
	for name, f := range printer.PrintingOptions() {
		if _, taken := set[name]; taken {
			continue
		}
		f.Name = name
		set[name] = f.Clone()
	}
	return set, nil
}
