package tree

import (
	"iter"
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Pair is a single key/value entry of a Map.
type Pair struct {
	Key   any
	Value any
}

// Map is an insertion-ordered mapping whose keys are either strings or ints.
// It is the container produced for traversables and for mappings whose key
// order must survive normalization.
type Map struct {
	entries *orderedmap.OrderedMap[any, any]
}

// NewMap builds a Map holding the supplied pairs in order. Later pairs
// overwrite earlier ones with the same key without moving them.
func NewMap(pairs ...Pair) *Map {
	m := &Map{entries: orderedmap.New[any, any]()}
	for _, pair := range pairs {
		m.Set(pair.Key, pair.Value)
	}
	return m
}

// Set stores value under key, appending the key when it is new.
func (m *Map) Set(key, value any) {
	m.init()
	m.entries.Set(key, value)
}

// Get returns the value stored under key.
func (m *Map) Get(key any) (any, bool) {
	if m == nil || m.entries == nil {
		return nil, false
	}
	return m.entries.Get(key)
}

// Len reports the number of entries.
func (m *Map) Len() int {
	if m == nil || m.entries == nil {
		return 0
	}
	return m.entries.Len()
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []any {
	keys := make([]any, 0, m.Len())
	for key := range m.All() {
		keys = append(keys, key)
	}
	return keys
}

// All iterates over the entries in insertion order.
func (m *Map) All() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		if m == nil || m.entries == nil {
			return
		}
		for pair := m.entries.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Equal reports whether both maps hold equal entries in the same order.
// Nested Maps, slices and string-keyed maps are compared recursively.
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	next, stop := iter.Pull2(other.All())
	defer stop()
	for key, value := range m.All() {
		otherKey, otherValue, ok := next()
		if !ok || key != otherKey || !equalValues(value, otherValue) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the map as a JSON object preserving key order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil || m.entries == nil {
		return []byte("{}"), nil
	}
	return m.entries.MarshalJSON()
}

func (m *Map) init() {
	if m.entries == nil {
		m.entries = orderedmap.New[any, any]()
	}
}

func equalValues(a, b any) bool {
	switch av := a.(type) {
	case *Map:
		bv, ok := b.(*Map)
		return ok && av.Equal(bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalValues(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for key, value := range av {
			other, exists := bv[key]
			if !exists || !equalValues(value, other) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}
