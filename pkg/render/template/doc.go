// Package template defines the engine-agnostic contract used to execute
// templates once their view data has been resolved and normalized. Adapters
// live in sub packages; pongo wraps a pongo2 template set.
package template
