package modules

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
)

// Component renders one content block. content is never nil.
type Component func(w io.Writer, content Content) error

// Factory builds a Component. Factories run exactly once, when the registry is frozen.
type Factory func() (Component, error)

// ErrFrozen is returned when registering into a frozen registry.
var ErrFrozen = errors.New("modules: registry is frozen")

// Registry maps case-insensitive block type tags to components. It is populated at startup,
// frozen, and then shared read-only across requests.
type Registry struct {
	mu         sync.RWMutex
	factories  map[string]Factory
	components map[string]Component
	frozen     bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register associates a factory with the provided type tag.
func (r *Registry) Register(name string, factory Factory) error {
	if name = normalize(name); name == "" {
		return fmt.Errorf("modules: type name is required")
	}
	if factory == nil {
		return fmt.Errorf("modules: factory for %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("%w: cannot register %q", ErrFrozen, name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("modules: type %q already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// MustRegister mirrors Register but panics on error.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// RegisterComponent registers a component that needs no construction.
func (r *Registry) RegisterComponent(name string, component Component) error {
	if component == nil {
		return fmt.Errorf("modules: component for %q is nil", normalize(name))
	}
	return r.Register(name, func() (Component, error) { return component, nil })
}

// Freeze resolves every factory and makes the registry read-only. Calling Freeze again is a no-op.
func (r *Registry) Freeze() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return nil
	}
	components := make(map[string]Component, len(r.factories))
	for name, factory := range r.factories {
		component, err := factory()
		if err != nil {
			return fmt.Errorf("modules: build %q: %w", name, err)
		}
		if component == nil {
			return fmt.Errorf("modules: factory for %q returned nil", name)
		}
		components[name] = component
	}
	r.components = components
	r.frozen = true
	return nil
}

// Frozen reports whether Freeze has completed.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Lookup returns the component registered for name. Unknown names are not an error.
// Before Freeze, Lookup always misses.
func (r *Registry) Lookup(name string) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	component, ok := r.components[normalize(name)]
	return component, ok
}

// Has reports whether name is registered, frozen or not.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[normalize(name)]
	return ok
}

// Names returns a sorted slice of registered type tags.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
