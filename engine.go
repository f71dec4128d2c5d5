package viewdata

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-viewdata/internal/logging"
	"github.com/goliatone/go-viewdata/internal/metrics"
	"github.com/goliatone/go-viewdata/pkg/normalize"
	"github.com/goliatone/go-viewdata/pkg/render"
	"github.com/goliatone/go-viewdata/pkg/render/template"
	"github.com/goliatone/go-viewdata/pkg/tree"
	"github.com/goliatone/go-viewdata/pkg/viewcontext"
)

// ViewContextFunc is the name of the template global bound to the engine
// registry when a renderer is configured.
const ViewContextFunc = "view_context"

// ErrNoRenderer is returned by Render when the engine has no template
// renderer.
var ErrNoRenderer = errors.New("viewdata: no template renderer configured")

// Option customises the engine configuration.
type Option func(*Engine)

// WithRegistry injects an existing context registry. Rules already present
// stay in place.
func WithRegistry(registry *viewcontext.Registry) Option {
	return func(e *Engine) {
		if registry != nil {
			e.registry = registry
		}
	}
}

// WithNormalizer replaces the normalizer used by Normalize and Prepare.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(e *Engine) {
		if n != nil {
			e.normalizer = n
		}
	}
}

// WithNormalizeOptions builds the engine normalizer from options.
func WithNormalizeOptions(options ...normalize.Option) Option {
	return func(e *Engine) {
		e.normalizer = normalize.New(options...)
	}
}

// WithRenderer sets the default template renderer. The engine registers the
// view_context global on every renderer during construction. When the
// renderer implements template.AutoEscaper and reports true, data handed to
// it skips the normalizer escape step even if WithEscape is enabled.
func WithRenderer(renderer template.TemplateRenderer) Option {
	return WithNamedRenderer(render.DefaultName, renderer)
}

// WithNamedRenderer registers an additional renderer selectable through
// RenderWith.
func WithNamedRenderer(name string, renderer template.TemplateRenderer) Option {
	return func(e *Engine) {
		if renderer == nil {
			return
		}
		if err := e.renderers.Register(name, renderer); err != nil && e.initialiseErr == nil {
			e.initialiseErr = fmt.Errorf("viewdata: %w", err)
		}
	}
}

// WithDefaultRenderer overrides the renderer used by Render. Defaults to
// render.DefaultName, falling back to the first registered name.
func WithDefaultRenderer(name string) Option {
	return func(e *Engine) {
		e.defaultRenderer = name
	}
}

// WithLogger overrides the logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics registers the engine collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		if reg != nil {
			e.metrics = metrics.New(reg)
		}
	}
}

// Engine owns the data preparation for a render pipeline: one context
// registry, one normalizer and any number of named template renderers. Rules
// are added for the lifetime of the engine and never removed.
type Engine struct {
	registry        *viewcontext.Registry
	normalizer      *normalize.Normalizer
	renderers       *render.Registry
	defaultRenderer string
	logger          *slog.Logger
	metrics         *metrics.Metrics
	initialiseErr   error
}

// New constructs an Engine applying any provided options. Missing
// dependencies get an empty registry, a non-escaping normalizer and a no-op
// logger.
func New(options ...Option) *Engine {
	e := &Engine{
		renderers:       render.NewRegistry(),
		defaultRenderer: render.DefaultName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.registry == nil {
		e.registry = viewcontext.NewRegistry()
	}
	if e.normalizer == nil {
		e.normalizer = normalize.New()
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	err := e.renderers.Each(func(name string, renderer template.TemplateRenderer) error {
		if err := renderer.GlobalContext(map[string]any{ViewContextFunc: e.viewContextFor(renderer)}); err != nil {
			return fmt.Errorf("viewdata: register %s on %q: %w", ViewContextFunc, name, err)
		}
		return nil
	})
	if err != nil && e.initialiseErr == nil {
		e.initialiseErr = err
	}
	return e
}

// Registry exposes the engine registry.
func (e *Engine) Registry() *viewcontext.Registry {
	return e.registry
}

// AddContext appends rules to the registry.
func (e *Engine) AddContext(rules ...viewcontext.Rule) {
	e.registry.AddAll(rules...)
}

// LoadContexts reads every rule file in fsys and appends the rules in file
// order. Nothing is added when any file fails.
func (e *Engine) LoadContexts(fsys fs.FS) error {
	rules, err := viewcontext.LoadFS(fsys)
	if err != nil {
		return err
	}
	e.registry.AddAll(rules...)
	e.logger.Debug("viewdata: loaded contexts", "rules", len(rules))
	return nil
}

// Context returns the merged payload of every rule matching identifier.
func (e *Engine) Context(identifier string) map[string]any {
	resolved, matched := e.registry.ResolveCount(identifier)
	e.metrics.ObserveResolve(matched > 0)
	return resolved
}

// Normalize converts value with the engine normalizer.
func (e *Engine) Normalize(value any) any {
	e.metrics.ObserveNormalize()
	return e.normalizer.Normalize(value)
}

// Prepare resolves the context for identifier, overlays data on top of it
// and normalizes the result. Caller data wins on key collision.
func (e *Engine) Prepare(identifier string, data map[string]any) map[string]any {
	return e.prepare(identifier, data, e.normalizer)
}

func (e *Engine) prepare(identifier string, data map[string]any, n *normalize.Normalizer) map[string]any {
	merged := e.Context(identifier)
	maps.Copy(merged, data)

	e.metrics.ObserveNormalize()
	prepared, _ := n.Normalize(merged).(map[string]any)
	if prepared == nil {
		prepared = map[string]any{}
	}
	e.logger.Debug("viewdata: prepared render data",
		"template", identifier,
		"context_keys", len(merged),
		"rules", e.registry.Len(),
	)
	return prepared
}

// Render prepares the data for identifier and hands it to the default
// renderer.
func (e *Engine) Render(identifier string, data map[string]any, out ...io.Writer) (string, error) {
	return e.RenderWith("", identifier, data, out...)
}

// RenderWith is Render using the renderer registered under name. An empty
// name selects the default renderer.
func (e *Engine) RenderWith(name, identifier string, data map[string]any, out ...io.Writer) (string, error) {
	if err := e.initialiseErr; err != nil {
		return "", err
	}
	renderer, err := e.rendererFor(name)
	if err != nil {
		return "", err
	}

	started := time.Now()
	output, err := renderer.Render(identifier, e.prepare(identifier, data, e.normalizerFor(renderer)), out...)
	e.metrics.ObserveRender(started, err)
	if err != nil {
		e.logger.Error("viewdata: render failed", "template", identifier, "error", err)
		return "", fmt.Errorf("viewdata: render %q: %w", identifier, err)
	}
	return output, nil
}

func (e *Engine) rendererFor(name string) (template.TemplateRenderer, error) {
	if name != "" {
		renderer, err := e.renderers.Get(name)
		if err != nil {
			return nil, fmt.Errorf("viewdata: %w", err)
		}
		return renderer, nil
	}
	if renderer, err := e.renderers.Get(e.defaultRenderer); err == nil {
		return renderer, nil
	}
	names := e.renderers.List()
	if len(names) == 0 {
		return nil, ErrNoRenderer
	}
	return e.renderers.Get(names[0])
}

// normalizerFor drops the escape step for renderers that escape on output.
func (e *Engine) normalizerFor(renderer template.TemplateRenderer) *normalize.Normalizer {
	auto, ok := renderer.(template.AutoEscaper)
	if !ok || !auto.AutoEscapes() || !e.normalizer.Options().Escape {
		return e.normalizer
	}
	return e.normalizer.With(normalize.WithEscape(false))
}

// viewContextFor builds the view_context template global for renderer.
// Ordered maps are flattened since template engines index plain maps.
func (e *Engine) viewContextFor(renderer template.TemplateRenderer) func(any) (map[string]any, error) {
	return func(identifier any) (map[string]any, error) {
		resolved, err := e.registry.ResolveValue(identifier)
		if err != nil {
			return nil, err
		}
		e.metrics.ObserveNormalize()
		normalized, _ := tree.Plain(e.normalizerFor(renderer).Normalize(resolved)).(map[string]any)
		if normalized == nil {
			normalized = map[string]any{}
		}
		return normalized, nil
	}
}
