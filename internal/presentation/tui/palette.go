package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aretw0/printdesk/pkg/spotlight"
)

// PaletteModel is the quick-action palette: a search box over the spotlight
// actions. Enter runs the highlighted action after the program exits.
type PaletteModel struct {
	input    textinput.Model
	actions  []spotlight.Action
	matches  []spotlight.Action
	cursor   int
	chosen   *spotlight.Action
	quitting bool
	styles   Styles
}

// NewPaletteModel creates a palette over actions.
func NewPaletteModel(actions []spotlight.Action, styles Styles) PaletteModel {
	ti := textinput.New()
	ti.Placeholder = "Search actions..."
	ti.Prompt = "> "
	ti.Focus()
	return PaletteModel{
		input:   ti,
		actions: actions,
		matches: spotlight.Search(actions, ""),
		styles:  styles,
	}
}

// Chosen returns the selected action, if any.
func (m PaletteModel) Chosen() (spotlight.Action, bool) {
	if m.chosen == nil {
		return spotlight.Action{}, false
	}
	return *m.chosen, true
}

// Matches returns the actions matching the current query.
func (m PaletteModel) Matches() []spotlight.Action {
	return m.matches
}

// Init implements tea.Model.
func (m PaletteModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m PaletteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if len(m.matches) > 0 {
				a := m.matches[m.cursor]
				m.chosen = &a
			}
			m.quitting = true
			return m, tea.Quit
		case tea.KeyUp, tea.KeyShiftTab:
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case tea.KeyDown, tea.KeyTab:
			if m.cursor < len(m.matches)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	prev := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != prev {
		m.matches = spotlight.Search(m.actions, m.input.Value())
		m.cursor = 0
	}
	return m, cmd
}

// View implements tea.Model.
func (m PaletteModel) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Spotlight"))
	sb.WriteString("\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n\n")
	if len(m.matches) == 0 {
		sb.WriteString(m.styles.Description.Render("  Nothing found..."))
		sb.WriteString("\n")
	}
	for i, a := range m.matches {
		label := m.styles.Item.Render(a.Label)
		if i == m.cursor {
			label = m.styles.Selected.Render(a.Label)
		}
		sb.WriteString(label)
		sb.WriteString(" ")
		sb.WriteString(m.styles.Description.Render(a.Description))
		sb.WriteString("\n")
	}
	sb.WriteString(m.styles.Help.Render("up/down: move • enter: run • esc: close"))
	return sb.String()
}

// RunPalette shows the palette and runs the chosen action.
func RunPalette(actions []spotlight.Action, opts ...tea.ProgramOption) error {
	final, err := tea.NewProgram(NewPaletteModel(actions, DefaultStyles()), opts...).Run()
	if err != nil {
		return err
	}
	if a, ok := final.(PaletteModel).Chosen(); ok && a.OnClick != nil {
		a.OnClick()
	}
	return nil
}
