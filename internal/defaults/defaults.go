// Package defaults embeds the label and report templates a fresh installation
// starts with.
package defaults

import (
	"embed"
	"fmt"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/printdesk/pkg/domain"
)

//go:embed manifest.yaml templates
var files embed.FS

type entry struct {
	File        string  `yaml:"file"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	ModelType   string  `yaml:"model_type"`
	Filters     string  `yaml:"filters"`
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
}

type manifest struct {
	Report []entry `yaml:"report"`
	Label  []entry `yaml:"label"`
}

// Templates returns the builtin templates, reports first. IDs are left zero.
func Templates() ([]domain.Template, error) {
	raw, err := files.ReadFile("manifest.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read default manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse default manifest: %w", err)
	}

	var out []domain.Template
	for _, group := range []struct {
		kind    domain.TemplateKind
		entries []entry
	}{
		{domain.KindReport, m.Report},
		{domain.KindLabel, m.Label},
	} {
		for _, e := range group.entries {
			t, err := load(group.kind, e)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
	}
	return out, nil
}

func load(kind domain.TemplateKind, e entry) (domain.Template, error) {
	body, err := files.ReadFile(path.Join("templates", string(kind), e.File))
	if err != nil {
		return domain.Template{}, &domain.TemplateMissingError{Name: e.File}
	}
	mt, err := domain.ParseModelType(e.ModelType)
	if err != nil {
		return domain.Template{}, fmt.Errorf("default template %q: %w", e.Name, err)
	}
	return domain.Template{
		Kind:        kind,
		Name:        e.Name,
		Description: e.Description,
		ModelType:   mt,
		Template:    string(body),
		Filters:     e.Filters,
		Enabled:     true,
		Width:       e.Width,
		Height:      e.Height,
	}, nil
}
