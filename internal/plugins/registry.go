package plugins

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/printdesk/pkg/domain"
)

type entry struct {
	plugin   Plugin
	active   bool
	settings map[string]any
}

// Registry manages the installed plugins.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]*entry
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]*entry),
	}
}

// Register adds a plugin to the registry.
// If a plugin with the same key exists, it is overwritten.
func (r *Registry) Register(p Plugin, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[p.Info().Key] = &entry{plugin: p, active: active, settings: make(map[string]any)}
}

// Get looks up a plugin by key.
func (r *Registry) Get(key string) (Plugin, domain.PluginInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.plugins[key]
	if !ok {
		return nil, domain.PluginInfo{}, fmt.Errorf("%w: %s", domain.ErrPluginNotFound, key)
	}
	return e.plugin, r.info(e), nil
}

// SetActive enables or disables a plugin.
func (r *Registry) SetActive(key string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.plugins[key]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrPluginNotFound, key)
	}
	e.active = active
	return nil
}

// SetSetting stores a plugin setting, e.g. DEBUG for the builtin label printer.
func (r *Registry) SetSetting(key, name string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.plugins[key]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrPluginNotFound, key)
	}
	e.settings[name] = value
	return nil
}

// Settings returns a copy of a plugin's settings.
func (r *Registry) Settings(key string) map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]any)
	if e, ok := r.plugins[key]; ok {
		for k, v := range e.settings {
			out[k] = v
		}
	}
	return out
}

// Infos describes every registered plugin, ordered by key.
func (r *Registry) Infos() []domain.PluginInfo {
	return r.WithMixin("", nil)
}

// WithMixin lists plugins providing mixin (any when empty), optionally filtered on
// their active flag.
func (r *Registry) WithMixin(mixin string, active *bool) []domain.PluginInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.PluginInfo
	for _, e := range r.plugins {
		info := r.info(e)
		if mixin != "" && !info.HasMixin(mixin) {
			continue
		}
		if active != nil && info.Active != *active {
			continue
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ReportHooks returns the active report plugins, ordered by key.
func (r *Registry) ReportHooks() []ReportHook {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []ReportHook
	for _, e := range r.plugins {
		if h, ok := e.plugin.(ReportHook); ok && e.active {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Info().Key < out[j].Info().Key })
	return out
}

func (r *Registry) info(e *entry) domain.PluginInfo {
	info := e.plugin.Info()
	info.Active = e.active
	info.Mixins = mixins(e.plugin)
	if lp, ok := e.plugin.(LabelPrinter); ok {
		info.Blocking = lp.Blocking()
	}
	if len(e.settings) > 0 {
		info.Settings = make(map[string]any, len(e.settings))
		for k, v := range e.settings {
			info.Settings[k] = v
		}
	}
	return info
}
