// Package render keeps the template renderers an engine can dispatch to.
package render

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-viewdata/pkg/render/template"
)

// DefaultName is the registry key used for a single unnamed renderer.
const DefaultName = "default"

// Registry stores template renderers by name, providing discovery and
// duplication safeguards.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]template.TemplateRenderer
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]template.TemplateRenderer),
	}
}

// Register adds a renderer under name. Duplicate names return an error.
func (r *Registry) Register(name string, renderer template.TemplateRenderer) error {
	if renderer == nil {
		return fmt.Errorf("render: renderer is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("render: renderer %q already registered", name)
	}

	r.renderers[name] = renderer
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, renderer template.TemplateRenderer) {
	if err := r.Register(name, renderer); err != nil {
		panic(err)
	}
}

// Get retrieves a renderer by name.
func (r *Registry) Get(name string) (template.TemplateRenderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("render: renderer %q not found", name)
	}
	return renderer, nil
}

// List returns a sorted list of renderer names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a renderer is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.renderers[name]
	return ok
}

// Len reports the number of registered renderers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.renderers)
}

// Each calls fn for every renderer in name order and stops at the first
// error.
func (r *Registry) Each(fn func(name string, renderer template.TemplateRenderer) error) error {
	for _, name := range r.List() {
		renderer, err := r.Get(name)
		if err != nil {
			return err
		}
		if err := fn(name, renderer); err != nil {
			return err
		}
	}
	return nil
}
