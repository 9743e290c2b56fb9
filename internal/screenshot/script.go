// Package screenshot drives a browser through a scripted tour of the web UI
// and saves one image per named step.
package screenshot

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ActionType is the interaction a step performs.
type ActionType string

const (
	ActionNavigate  ActionType = "navigate"
	ActionClick     ActionType = "click"
	ActionClickText ActionType = "click_text"
	ActionFill      ActionType = "fill"
)

// Action is one interaction. Target is a URL or path for navigate, a CSS
// selector for click and fill, and visible text for click_text.
type Action struct {
	Type   ActionType `yaml:"type"`
	Target string     `yaml:"target"`
	Value  string     `yaml:"value,omitempty"`
}

// Step performs an action, waits for a condition and captures an image.
// A step without a name captures nothing.
type Step struct {
	Name         string `yaml:"name,omitempty"`
	Action       Action `yaml:"action"`
	WaitText     string `yaml:"wait_text,omitempty"`
	WaitSelector string `yaml:"wait_selector,omitempty"`
}

// Script is an ordered tour of one feature area.
type Script struct {
	Category string `yaml:"category"`
	Steps    []Step `yaml:"steps"`
}

// Validate checks the script before it runs.
func (s Script) Validate() error {
	if s.Category == "" {
		return fmt.Errorf("script has no category")
	}
	for i, st := range s.Steps {
		switch st.Action.Type {
		case ActionNavigate, ActionClick, ActionClickText, ActionFill:
		default:
			return fmt.Errorf("step %d: unknown action %q", i+1, st.Action.Type)
		}
		if st.Action.Target == "" {
			return fmt.Errorf("step %d: action %s has no target", i+1, st.Action.Type)
		}
	}
	return nil
}

// Paths lists the images the script writes below outDir, in order.
func (s Script) Paths(outDir string) []string {
	var paths []string
	for _, st := range s.Steps {
		if st.Name != "" {
			paths = append(paths, imagePath(outDir, s.Category, st.Name))
		}
	}
	return paths
}

// LoadScript reads a script from a YAML file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script %s: %w", path, err)
	}
	return &s, nil
}

// LoginScript signs in through the login form. Its steps capture nothing.
func LoginScript(username, password string) Script {
	return Script{
		Category: "login",
		Steps: []Step{
			{Action: Action{Type: ActionNavigate, Target: "/web/login"}, WaitSelector: `input[name="username"]`},
			{Action: Action{Type: ActionFill, Target: `input[name="username"]`, Value: username}},
			{Action: Action{Type: ActionFill, Target: `input[name="password"]`, Value: password}},
			{Action: Action{Type: ActionClick, Target: `button[type="submit"]`}, WaitText: "Dashboard"},
		},
	}
}

// BuildScript is the tour of the build order pages.
func BuildScript() Script {
	tab := func(name, label, wait string) Step {
		return Step{
			Name:     name,
			Action:   Action{Type: ActionClickText, Target: label},
			WaitText: wait,
		}
	}
	return Script{
		Category: "build",
		Steps: []Step{
			{
				Name:     "index",
				Action:   Action{Type: ActionNavigate, Target: "/web/manufacturing/index/buildorders"},
				WaitText: "Build Orders",
			},
			{
				Name:         "detail",
				Action:       Action{Type: ActionClickText, Target: "BO0011"},
				WaitSelector: `[role="tab"]`,
			},
			tab("line_items", "Line Items", "Required Quantity"),
			tab("allocated_stock", "Allocated Stock", "Allocated Quantity"),
			tab("incomplete_outputs", "Incomplete Outputs", "Build Output"),
			tab("completed_outputs", "Completed Outputs", "Build Output"),
			tab("consumed_stock", "Consumed Stock", "Quantity"),
			tab("child_orders", "Child Build Orders", "Reference"),
			tab("attachments", "Attachments", "Attachment"),
			tab("notes", "Notes", "Notes"),
		},
	}
}
