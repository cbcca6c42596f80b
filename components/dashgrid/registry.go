package dashgrid

import (
	"fmt"
	"sync"
)

// TypeHook lets packages register widget types during init().
type TypeHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []TypeHook
)

// RegisterTypeHook registers a hook executed against new registries.
func RegisterTypeHook(h TypeHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// WidgetDefinition describes a widget type: its default footprint on the grid
// and the JSON schema its data-configuration blob must satisfy.
type WidgetDefinition struct {
	Type        WidgetType     `json:"type" yaml:"type"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string         `json:"category,omitempty" yaml:"category,omitempty"`
	DefaultSize Size           `json:"default_size" yaml:"default_size"`
	Schema      map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// Registry stores widget definitions discoverable via hooks or manifests.
type Registry struct {
	mu          sync.RWMutex
	definitions map[WidgetType]WidgetDefinition
}

// NewRegistry builds a registry seeded with the built-in widget types and
// applies global hooks.
func NewRegistry() *Registry {
	reg := &Registry{definitions: map[WidgetType]WidgetDefinition{}}
	for _, def := range DefaultWidgetDefinitions() {
		_ = reg.RegisterDefinition(def)
	}
	_ = reg.ApplyHooks()
	return reg
}

// ApplyHooks executes registered type hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDefinition stores widget type metadata.
func (r *Registry) RegisterDefinition(def WidgetDefinition) error {
	if def.Type == "" {
		return fmt.Errorf("dashgrid: widget definition type is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Type] = def
	return nil
}

// Definition fetches a widget definition by type.
func (r *Registry) Definition(t WidgetType) (WidgetDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[t]
	return def, ok
}

// Footprint returns the default footprint for a type. Unknown types fall back
// to the minimum 4x3 footprint.
func (r *Registry) Footprint(t WidgetType) Size {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if def, ok := r.definitions[t]; ok && def.DefaultSize.Width > 0 && def.DefaultSize.Height > 0 {
		return def.DefaultSize
	}
	return fallbackFootprint
}

// Definitions returns all registered definitions.
func (r *Registry) Definitions() []WidgetDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]WidgetDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	return defs
}
