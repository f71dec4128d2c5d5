// Package normalize turns arbitrary values into the canonical tree consumed by
// rendering contexts: strings, scalars and the containers produced by
// pkg/tree. Opaque objects are converted through an ordered chain of
// strategies; values nothing can convert pass through unchanged.
package normalize

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/goliatone/go-viewdata/pkg/textcodec"
	"github.com/goliatone/go-viewdata/pkg/tree"
)

// Options control a normalization pass.
type Options struct {
	// Escape encodes every string leaf, including stringified scalars.
	Escape bool
	// Stringify converts numbers, booleans and nil into text.
	Stringify bool
	// Transformers are tried in order before the built-in object strategies.
	Transformers []Transformer
	// Codec encodes strings when Escape is set. Defaults to textcodec.HTML.
	Codec textcodec.Codec
}

// Option mutates Options before a Normalizer is built.
type Option func(*Options)

// WithEscape toggles string escaping.
func WithEscape(enabled bool) Option {
	return func(o *Options) {
		o.Escape = enabled
	}
}

// WithStringify toggles scalar to text coercion.
func WithStringify(enabled bool) Option {
	return func(o *Options) {
		o.Stringify = enabled
	}
}

// WithTransformers appends transformers to the chain. Nil entries are ignored.
func WithTransformers(transformers ...Transformer) Option {
	return func(o *Options) {
		for _, transformer := range transformers {
			if transformer == nil {
				continue
			}
			o.Transformers = append(o.Transformers, transformer)
		}
	}
}

// WithCodec overrides the codec used when escaping.
func WithCodec(codec textcodec.Codec) Option {
	return func(o *Options) {
		o.Codec = codec
	}
}

// Normalizer applies a fixed set of Options. It holds no per-call state and is
// safe for concurrent use.
type Normalizer struct {
	options Options
}

// New constructs a Normalizer from the supplied options.
func New(options ...Option) *Normalizer {
	n := &Normalizer{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&n.options)
	}
	if n.options.Codec == nil {
		n.options.Codec = textcodec.HTML
	}
	return n
}

// Options returns a copy of the normalizer configuration.
func (n *Normalizer) Options() Options {
	if n == nil {
		return Options{Codec: textcodec.HTML}
	}
	out := n.options
	out.Transformers = append([]Transformer(nil), n.options.Transformers...)
	return out
}

// With returns a new Normalizer carrying the receiver's options plus the
// supplied overrides.
func (n *Normalizer) With(options ...Option) *Normalizer {
	base := n.Options()
	return New(append([]Option{func(o *Options) { *o = base }}, options...)...)
}

// Normalize converts value into a canonical tree. The input is never mutated.
func (n *Normalizer) Normalize(value any) any {
	w := &walker{
		options: n.Options(),
		active:  tree.NewPath(),
	}
	return w.walk(value)
}

// Normalize is shorthand for New(...).Normalize(value).
func Normalize(value any, escape bool, transformers []Transformer, stringify bool) any {
	return New(
		WithEscape(escape),
		WithTransformers(transformers...),
		WithStringify(stringify),
	).Normalize(value)
}

type walker struct {
	options Options
	active  tree.Path
}

func (w *walker) walk(value any) any {
	switch v := value.(type) {
	case nil:
		return w.scalar(nil)
	case string:
		return w.text(v)
	case []byte:
		return w.text(string(v))
	case json.Number:
		return w.scalar(number(v))
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64, complex64, complex128:
		return w.scalar(v)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return w.text(rv.String())
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return w.scalar(value)
	case reflect.Pointer:
		if rv.IsNil() {
			return w.scalar(nil)
		}
	}

	leave, ok := w.active.Enter(rv)
	if !ok {
		return nil
	}
	defer leave()

	if out, ok := tree.Rebuild(value, w.walk); ok {
		return out
	}

	switch rv.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return value
	}
	return w.object(value, rv)
}

// object runs the conversion chain: explicit transformers, ToArray, AsArray,
// a JSON round trip and finally an exported field snapshot.
func (w *walker) object(value any, rv reflect.Value) any {
	for _, transformer := range w.options.Transformers {
		if out, ok := transformer.Transform(value); ok && tree.IsContainer(out) {
			return w.walk(out)
		}
	}
	if out, ok := toArray(value); ok && tree.IsContainer(out) {
		return w.walk(out)
	}
	if out, ok := asArray(value); ok && tree.IsContainer(out) {
		return w.walk(out)
	}
	if out, ok := roundTrip(value); ok {
		return w.walk(out)
	}
	if out, ok := snapshot(rv); ok {
		return w.walk(out)
	}
	if rv.Kind() == reflect.Pointer {
		return w.walk(rv.Elem().Interface())
	}
	return value
}

func (w *walker) text(s string) any {
	if !w.options.Escape {
		return s
	}
	return w.options.Codec.Escape(s)
}

func (w *walker) scalar(value any) any {
	if !w.options.Stringify {
		return value
	}
	return w.text(formatScalar(value))
}

func roundTrip(value any) (any, bool) {
	if _, ok := value.(json.Marshaler); !ok {
		return nil, false
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, false
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var out any
	if err := decoder.Decode(&out); err != nil {
		return nil, false
	}
	return out, true
}

func number(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
