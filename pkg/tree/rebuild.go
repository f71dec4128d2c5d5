package tree

import (
	"cmp"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strconv"
)

// Traversable is implemented by values that can be iterated once but expose
// no indexed or keyed access.
type Traversable interface {
	All() iter.Seq2[any, any]
}

// Rebuild reports whether value is a container or a traversable. When it is,
// the returned copy holds fn applied to every element:
//
//   - slices and arrays become []any ([]byte is text, not a container);
//   - maps with string keys become map[string]any;
//   - maps with other keys become a *Map, keys visited in sorted order;
//   - *Map values, Traversables and iter.Seq/iter.Seq2 functions become a *Map.
//
// When a *Map is produced, string keys are kept and every other key is
// replaced by the element's position within the container.
func Rebuild(value any, fn func(any) any) (any, bool) {
	switch v := value.(type) {
	case nil, []byte:
		return nil, false
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = fn(item)
		}
		return out, true
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = fn(item)
		}
		return out, true
	case *Map:
		return collect(v.All(), fn), true
	case Traversable:
		return collect(v.All(), fn), true
	case iter.Seq2[any, any]:
		return collect(v, fn), true
	case func(func(any, any) bool):
		return collect(v, fn), true
	case iter.Seq2[string, any]:
		return collect(widen(v), fn), true
	case iter.Seq2[int, any]:
		return collect(widen(v), fn), true
	case iter.Seq[any]:
		return collect(enumerate(v), fn), true
	case func(func(any) bool):
		return collect(enumerate(v), fn), true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = fn(rv.Index(i).Interface())
		}
		return out, true
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			out := make(map[string]any, rv.Len())
			entries := rv.MapRange()
			for entries.Next() {
				out[entries.Key().String()] = fn(entries.Value().Interface())
			}
			return out, true
		}
		// NaN keys cannot be looked up again, so entries are read in one pass.
		entries := make([][2]reflect.Value, 0, rv.Len())
		cursor := rv.MapRange()
		for cursor.Next() {
			entries = append(entries, [2]reflect.Value{cursor.Key(), cursor.Value()})
		}
		slices.SortStableFunc(entries, func(a, b [2]reflect.Value) int {
			return compareKeys(a[0], b[0])
		})
		out := NewMap()
		for pos, entry := range entries {
			out.Set(keyAt(entry[0].Interface(), pos), fn(entry[1].Interface()))
		}
		return out, true
	}
	return nil, false
}

// IsContainer reports whether Rebuild would treat value as a container. It
// never iterates value, so one-shot traversables are left untouched.
func IsContainer(value any) bool {
	switch value.(type) {
	case nil, []byte:
		return false
	case []any, map[string]any, *Map, Traversable,
		iter.Seq2[any, any], iter.Seq2[string, any], iter.Seq2[int, any], iter.Seq[any],
		func(func(any, any) bool), func(func(any) bool):
		return true
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

// Plain converts every *Map inside value into a map[string]any, formatting
// int keys in base 10. Slices and string-keyed maps are copied; other values
// are returned as is. Template engines that only understand builtin
// containers consume the result.
func Plain(value any) any {
	switch v := value.(type) {
	case *Map:
		out := make(map[string]any, v.Len())
		for key, item := range v.All() {
			out[formatKey(key)] = Plain(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Plain(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = Plain(item)
		}
		return out
	default:
		return value
	}
}

func collect(seq iter.Seq2[any, any], fn func(any) any) *Map {
	out := NewMap()
	pos := 0
	for key, item := range seq {
		out.Set(keyAt(key, pos), fn(item))
		pos++
	}
	return out
}

func keyAt(key any, pos int) any {
	if name, ok := key.(string); ok {
		return name
	}
	if key != nil {
		if rv := reflect.ValueOf(key); rv.Kind() == reflect.String {
			return rv.String()
		}
	}
	return pos
}

func widen[K any](seq iter.Seq2[K, any]) iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		for key, value := range seq {
			if !yield(key, value) {
				return
			}
		}
	}
}

func enumerate(seq iter.Seq[any]) iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		pos := 0
		for value := range seq {
			if !yield(pos, value) {
				return
			}
			pos++
		}
	}
}

func formatKey(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case int:
		return strconv.Itoa(k)
	default:
		return fmt.Sprint(k)
	}
}

func compareKeys(a, b reflect.Value) int {
	for a.Kind() == reflect.Interface && !a.IsNil() {
		a = a.Elem()
	}
	for b.Kind() == reflect.Interface && !b.IsNil() {
		b = b.Elem()
	}
	switch {
	case isInt(a) && isInt(b):
		return cmp.Compare(a.Int(), b.Int())
	case isUint(a) && isUint(b):
		return cmp.Compare(a.Uint(), b.Uint())
	case isFloat(a) && isFloat(b):
		return cmp.Compare(a.Float(), b.Float())
	}
	return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
}

func isInt(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isFloat(v reflect.Value) bool {
	return v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
}
