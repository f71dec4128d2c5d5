package normalize

// Transformer converts an opaque value into a container. Transform reports
// false when it does not handle value, letting the next strategy run.
type Transformer interface {
	Transform(value any) (any, bool)
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(value any) (any, bool)

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(value any) (any, bool) {
	if fn == nil {
		return nil, false
	}
	return fn(value)
}

// ForType returns a Transformer that only handles values of type T.
func ForType[T any](fn func(T) any) Transformer {
	return TransformerFunc(func(value any) (any, bool) {
		typed, ok := value.(T)
		if !ok || fn == nil {
			return nil, false
		}
		return fn(typed), true
	})
}

// Arrayable values expose their own container form.
type Arrayable interface {
	ToArray() any
}

// ArrayConvertible is the alternative spelling checked after Arrayable.
type ArrayConvertible interface {
	AsArray() any
}

func toArray(value any) (any, bool) {
	switch v := value.(type) {
	case Arrayable:
		return v.ToArray(), true
	case interface{ ToArray() map[string]any }:
		return v.ToArray(), true
	case interface{ ToArray() []any }:
		return v.ToArray(), true
	}
	return nil, false
}

func asArray(value any) (any, bool) {
	switch v := value.(type) {
	case ArrayConvertible:
		return v.AsArray(), true
	case interface{ AsArray() map[string]any }:
		return v.AsArray(), true
	case interface{ AsArray() []any }:
		return v.AsArray(), true
	}
	return nil, false
}
