package spotlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(actions []Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.ID
	}
	return out
}

func TestActions_NonStaff(t *testing.T) {
	actions := Actions(false, Handlers{})
	require.Len(t, actions, 7)
	assert.Equal(t, []string{"home", "dashboard", "documentation", "about", "server-info", "license-info", "navigation"}, ids(actions))
}

func TestActions_Staff(t *testing.T) {
	actions := Actions(true, Handlers{})
	require.Len(t, actions, 8)
	assert.Equal(t, "admin-center", actions[7].ID)
	assert.Equal(t, ids(Actions(false, Handlers{})), ids(actions[:7]))
}

func TestActions_Handlers(t *testing.T) {
	var navigated, opened []string
	var about, server, license, nav int
	h := Handlers{
		Navigate:        func(p string) { navigated = append(navigated, p) },
		OpenURL:         func(u string) { opened = append(opened, u) },
		ShowAbout:       func() { about++ },
		ShowServerInfo:  func() { server++ },
		ShowLicenseInfo: func() { license++ },
		OpenNavigation:  func() { nav++ },
	}
	for _, a := range Actions(true, h) {
		a.OnClick()
	}
	assert.Equal(t, []string{"/home", "/dashboard", "/settings/admin"}, navigated)
	assert.Equal(t, []string{DocumentationURL}, opened)
	assert.Equal(t, []int{1, 1, 1, 1}, []int{about, server, license, nav})
}

func TestActions_NilHandlersAreSafe(t *testing.T) {
	for _, a := range Actions(true, Handlers{}) {
		assert.NotPanics(t, a.OnClick, a.ID)
	}
}

func TestSearch(t *testing.T) {
	actions := Actions(true, Handlers{})

	assert.Len(t, Search(actions, "  "), 8)
	assert.Equal(t, []string{"server-info", "license-info"}, ids(Search(actions, "information")))
	assert.Equal(t, []string{"admin-center"}, ids(Search(actions, "admin")))
	assert.Equal(t, []string{"dashboard"}, ids(Search(actions, "dashbord")), "typo within edit distance")
	assert.Equal(t, []string{"navigation"}, ids(Search(actions, "menu")), "description match")
	assert.Empty(t, Search(actions, "zzzzzz"))
}
