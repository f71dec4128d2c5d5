// Package viewdata prepares data for template rendering. It decides which
// context rules apply to a template identifier and normalizes caller values
// into a render ready tree before a template.TemplateRenderer executes it.
//
// Typical wiring:
//
//	renderer, _ := pongo.New(pongo.WithBaseDir("./templates"))
//	engine := viewdata.New(viewdata.WithRenderer(renderer))
//	engine.AddContext(viewcontext.NewGlobal(map[string]any{"site": "Acme"}))
//	html, err := engine.Render("admin/home", map[string]any{"title": "Home"})
package viewdata

import (
	"github.com/goliatone/go-viewdata/pkg/normalize"
	"github.com/goliatone/go-viewdata/pkg/textcodec"
)

// Transformer aliases normalize.Transformer for callers that only import the
// root package.
type Transformer = normalize.Transformer

// Normalize converts value into the canonical tree without constructing an
// engine.
func Normalize(value any, escape bool, transformers []Transformer, stringify bool) any {
	return normalize.Normalize(value, escape, transformers, stringify)
}

// Escape HTML-escapes every string inside value.
func Escape(value any) any {
	return textcodec.EscapeValue(value)
}

// Unescape reverses Escape.
func Unescape(value any) any {
	return textcodec.UnescapeValue(value)
}
