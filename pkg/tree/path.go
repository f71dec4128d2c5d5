package tree

import "reflect"

type ref struct {
	typ reflect.Type
	ptr uintptr
	len int
}

// Path records the reference values (pointers, maps and non-empty slices)
// on the current recursion path so walkers can cut cycles.
type Path map[ref]struct{}

// NewPath returns an empty Path.
func NewPath() Path {
	return make(Path)
}

// Enter marks rv as active. It returns false when rv is already on the path.
// The returned leave func must be called once the walker is done with rv;
// values that cannot form a cycle get a no-op.
func (p Path) Enter(rv reflect.Value) (leave func(), ok bool) {
	key, tracked := identify(rv)
	if !tracked {
		return func() {}, true
	}
	if _, seen := p[key]; seen {
		return func() {}, false
	}
	p[key] = struct{}{}
	return func() { delete(p, key) }, true
}

func identify(rv reflect.Value) (ref, bool) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map:
		if rv.IsNil() {
			return ref{}, false
		}
		return ref{typ: rv.Type(), ptr: rv.Pointer()}, true
	case reflect.Slice:
		if rv.IsNil() || rv.Len() == 0 {
			return ref{}, false
		}
		return ref{typ: rv.Type(), ptr: rv.Pointer(), len: rv.Len()}, true
	}
	return ref{}, false
}
