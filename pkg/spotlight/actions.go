// Package spotlight builds the entries of the quick-action palette.
package spotlight

// DocumentationURL is opened by the documentation action.
const DocumentationURL = "https://docs.inventree.org"

// Action is one entry of the palette. Invoking it is fire-and-forget.
type Action struct {
	ID          string
	Label       string
	Description string
	Icon        string
	OnClick     func()
}

// Handlers perform the side effects of the actions. Nil handlers are skipped.
type Handlers struct {
	Navigate        func(path string)
	OpenURL         func(url string)
	ShowAbout       func()
	ShowServerInfo  func()
	ShowLicenseInfo func()
	OpenNavigation  func()
}

// Actions returns the palette entries for a user. Staff users get the admin
// center entry appended to the seven base entries.
func Actions(staff bool, h Handlers) []Action {
	actions := []Action{
		{
			ID:          "home",
			Label:       "Home",
			Description: "Go to the home page",
			Icon:        "home",
			OnClick:     navigate(h, "/home"),
		},
		{
			ID:          "dashboard",
			Label:       "Dashboard",
			Description: "Go to the InvenTree dashboard",
			Icon:        "dashboard",
			OnClick:     navigate(h, "/dashboard"),
		},
		{
			ID:          "documentation",
			Label:       "Documentation",
			Description: "Visit the documentation to learn more about InvenTree",
			Icon:        "info",
			OnClick: func() {
				if h.OpenURL != nil {
					h.OpenURL(DocumentationURL)
				}
			},
		},
		{
			ID:          "about",
			Label:       "About InvenTree",
			Description: "About the InvenTree org",
			Icon:        "info",
			OnClick:     call(h.ShowAbout),
		},
		{
			ID:          "server-info",
			Label:       "Server Information",
			Description: "About this InvenTree instance",
			Icon:        "info",
			OnClick:     call(h.ShowServerInfo),
		},
		{
			ID:          "license-info",
			Label:       "License Information",
			Description: "Licenses for dependencies of the service",
			Icon:        "license",
			OnClick:     call(h.ShowLicenseInfo),
		},
		{
			ID:          "navigation",
			Label:       "Open Navigation",
			Description: "Open the main navigation menu",
			Icon:        "menu",
			OnClick:     call(h.OpenNavigation),
		},
	}

	if staff {
		actions = append(actions, Action{
			ID:          "admin-center",
			Label:       "Admin Center",
			Description: "Go to the Admin Center",
			Icon:        "admin",
			OnClick:     navigate(h, "/settings/admin"),
		})
	}
	return actions
}

func navigate(h Handlers, path string) func() {
	return func() {
		if h.Navigate != nil {
			h.Navigate(path)
		}
	}
}

func call(fn func()) func() {
	return func() {
		if fn != nil {
			fn()
		}
	}
}
