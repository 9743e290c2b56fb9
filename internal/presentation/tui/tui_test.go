package tui

import (
	"bytes"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/printdesk/pkg/spotlight"
	"github.com/aretw0/printdesk/pkg/trigger"
)

func typeText(m tea.Model, s string) tea.Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestPalette_FilterAndChoose(t *testing.T) {
	var navigated string
	actions := spotlight.Actions(true, spotlight.Handlers{Navigate: func(p string) { navigated = p }})

	var m tea.Model = NewPaletteModel(actions, DefaultStyles())
	assert.Len(t, m.(PaletteModel).Matches(), 8)

	m = typeText(m, "admin")
	require.Len(t, m.(PaletteModel).Matches(), 1)
	assert.Contains(t, m.View(), "Admin Center")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	a, ok := m.(PaletteModel).Chosen()
	require.True(t, ok)
	a.OnClick()
	assert.Equal(t, "/settings/admin", navigated)
}

func TestPalette_CursorAndEscape(t *testing.T) {
	var m tea.Model = NewPaletteModel(spotlight.Actions(false, spotlight.Handlers{}), DefaultStyles())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, m.(PaletteModel).cursor)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	_, ok := m.(PaletteModel).Chosen()
	assert.False(t, ok)
	assert.Empty(t, m.View())
}

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(&buf)
	n.Notify(trigger.Notification{Level: trigger.LevelError, Title: "The label could not be generated", Message: "printer offline"})
	assert.Contains(t, buf.String(), "The label could not be generated")
	assert.Contains(t, buf.String(), "printer offline")
}

func TestOpener_PrintsWithoutLaunching(t *testing.T) {
	var buf bytes.Buffer
	o := NewOpener(&buf, false)
	launched := false
	o.run = func(string, ...string) error { launched = true; return nil }

	require.NoError(t, o.Open("http://host/media/x.pdf"))
	assert.Equal(t, "Output: http://host/media/x.pdf\n", buf.String())
	assert.False(t, launched)
}

func TestMarkdown(t *testing.T) {
	md := ServerInfoMarkdown(ServerInfo{Server: "http://localhost:8080", Version: "0.4.0", Plugins: []string{"inventreelabel"}})
	assert.Contains(t, md, "| Version | 0.4.0 |")
	assert.Contains(t, md, "- inventreelabel")

	out, err := NewRenderer()(AboutMarkdown("0.4.0\n"))
	require.NoError(t, err)
	assert.Contains(t, out, "0.4.0")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_|")
}
