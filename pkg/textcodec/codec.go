// Package textcodec escapes and unescapes text for safe embedding in markup.
// The value helpers walk containers and traversables, rebuilding them the
// same way the normalizer does and transforming every string leaf. A cyclic
// reference becomes nil.
package textcodec

import (
	"html"
	"reflect"
	"strings"

	"github.com/goliatone/go-viewdata/pkg/tree"
)

// Codec converts a single string to and from its embedded form.
type Codec interface {
	Escape(text string) string
	Unescape(text string) string
}

// HTML is the default codec. It encodes ampersands, angle brackets and both
// quote characters, substituting invalid UTF-8 with U+FFFD.
var HTML Codec = htmlCodec{}

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

type htmlCodec struct{}

func (htmlCodec) Escape(text string) string {
	return htmlReplacer.Replace(strings.ToValidUTF8(text, "\uFFFD"))
}

func (htmlCodec) Unescape(text string) string {
	return html.UnescapeString(text)
}

// Escape encodes text with the HTML codec.
func Escape(text string) string {
	return HTML.Escape(text)
}

// Unescape decodes text with the HTML codec.
func Unescape(text string) string {
	return HTML.Unescape(text)
}

// EscapeValue escapes every string leaf of value using the HTML codec.
func EscapeValue(value any) any {
	return EscapeValueWith(HTML, value)
}

// UnescapeValue unescapes every string leaf of value using the HTML codec.
func UnescapeValue(value any) any {
	return UnescapeValueWith(HTML, value)
}

// EscapeValueWith escapes every string leaf of value using codec.
func EscapeValueWith(codec Codec, value any) any {
	if codec == nil {
		codec = HTML
	}
	return apply(value, codec.Escape)
}

// UnescapeValueWith unescapes every string leaf of value using codec.
func UnescapeValueWith(codec Codec, value any) any {
	if codec == nil {
		codec = HTML
	}
	return apply(value, codec.Unescape)
}

func apply(value any, fn func(string) string) any {
	return (&walker{fn: fn, active: tree.NewPath()}).walk(value)
}

// walker replaces a container already on the recursion path with nil.
type walker struct {
	fn     func(string) string
	active tree.Path
}

func (w *walker) walk(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return w.fn(v)
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.String {
		return w.fn(rv.String())
	}

	leave, ok := w.active.Enter(rv)
	if !ok {
		return nil
	}
	defer leave()

	if out, ok := tree.Rebuild(value, w.walk); ok {
		return out
	}
	return value
}
