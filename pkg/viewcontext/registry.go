package viewcontext

import (
	"fmt"
	"maps"
	"sync"
)

// Registry stores rules in registration order and resolves the merged data
// for a template identifier. It is safe for concurrent use: Add serialises
// against readers.
type Registry struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewRegistry creates an empty registry instance.
func NewRegistry(rules ...Rule) *Registry {
	r := &Registry{}
	r.AddAll(rules...)
	return r
}

// Add appends rule. Rules are never deduplicated or reordered.
func (r *Registry) Add(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule)
}

// AddAll appends rules in order.
func (r *Registry) AddAll(rules ...Rule) {
	if len(rules) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rules...)
}

// Resolve merges the payloads of every rule matching identifier, in
// registration order. Keys set by a later rule overwrite earlier ones. The
// result is a fresh map, empty when nothing matches.
func (r *Registry) Resolve(identifier string) map[string]any {
	merged, _ := r.ResolveCount(identifier)
	return merged
}

// ResolveCount is Resolve that also reports how many rules matched, taken
// from the same pass over the rules.
func (r *Registry) ResolveCount(identifier string) (map[string]any, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	merged := make(map[string]any)
	matched := 0
	for _, rule := range r.rules {
		if rule.Matches(identifier) {
			maps.Copy(merged, rule.payload)
			matched++
		}
	}
	return merged, matched
}

// ResolveValue is Resolve for untyped callers such as template functions.
// A non-text identifier fails with ErrInvalidArgument.
func (r *Registry) ResolveValue(identifier any) (map[string]any, error) {
	text, ok := asText(identifier)
	if !ok {
		return nil, fmt.Errorf("%w: template identifier must be a string, got %T", ErrInvalidArgument, identifier)
	}
	return r.Resolve(text), nil
}

// Matching returns the rules that apply to identifier, in registration order.
func (r *Registry) Matching(identifier string) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Rule
	for _, rule := range r.rules {
		if rule.Matches(identifier) {
			out = append(out, rule)
		}
	}
	return out
}

// Rules returns a snapshot of the registered rules.
func (r *Registry) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Rule(nil), r.rules...)
}

// Len reports how many rules are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rules)
}
