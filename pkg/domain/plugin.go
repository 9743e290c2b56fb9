package domain

// Mixin names used to filter plugins by capability.
const (
	MixinLabels = "labels"
	MixinReport = "report"
)

// PluginInfo is the public description of a registered print plugin.
type PluginInfo struct {
	Key         string         `json:"key"`
	Name        string         `json:"name"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Version     string         `json:"version"`
	Author      string         `json:"author"`
	Mixins      []string       `json:"mixins"`
	Active      bool           `json:"active"`
	Builtin     bool           `json:"is_builtin"`
	Blocking    bool           `json:"blocking"`
	Settings    map[string]any `json:"settings,omitempty"`
}

// HasMixin reports whether the plugin provides the named capability.
func (p PluginInfo) HasMixin(mixin string) bool {
	for _, m := range p.Mixins {
		if m == mixin {
			return true
		}
	}
	return false
}

// User identifies who asked for a print. Authentication is handled upstream.
type User struct {
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
}
