package template

import (
	"io"
)

// FilterFunc transforms a template value, optionally using the filter
// parameter.
type FilterFunc func(input any, param any) (any, error)

// TemplateRenderer executes templates against prepared view data. Render
// accepts either a template name or inline template content; RenderString
// always treats its argument as content. Both write the output to every
// supplied writer in addition to returning it.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn FilterFunc) error
	GlobalContext(data any) error
}

// AutoEscaper is implemented by renderers that escape output on their own.
// Callers preparing data for such a renderer should leave strings unescaped
// so values are not encoded twice.
type AutoEscaper interface {
	AutoEscapes() bool
}
