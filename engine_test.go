package viewdata_test

import (
	"errors"
	"io"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	viewdata "github.com/goliatone/go-viewdata"
	"github.com/goliatone/go-viewdata/pkg/normalize"
	"github.com/goliatone/go-viewdata/pkg/render/template"
	"github.com/goliatone/go-viewdata/pkg/render/template/pongo"
	"github.com/goliatone/go-viewdata/pkg/tree"
	"github.com/goliatone/go-viewdata/pkg/viewcontext"
)

func TestEngine_ContextMergeOrder(t *testing.T) {
	engine := viewdata.New()
	engine.AddContext(viewcontext.NewGlobal(map[string]any{"x": 1}))
	engine.AddContext(mustLiteral(t, "home", map[string]any{"x": 2, "y": 3}))

	if diff := cmp.Diff(map[string]any{"x": 2, "y": 3}, engine.Context("home")); diff != "" {
		t.Fatalf("home context mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"x": 1}, engine.Context("other")); diff != "" {
		t.Fatalf("other context mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_PrepareOverlaysCallerData(t *testing.T) {
	engine := viewdata.New(viewdata.WithNormalizeOptions(normalize.WithEscape(true)))
	engine.AddContext(viewcontext.NewGlobal(map[string]any{"title": "Default", "site": "Acme & Co"}))

	got := engine.Prepare("page", map[string]any{
		"title": "<Home>",
		"tags":  []string{"a"},
	})
	want := map[string]any{
		"title": "&lt;Home&gt;",
		"site":  "Acme &amp; Co",
		"tags":  []any{"a"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("prepared mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(map[string]any{"title": "Default", "site": "Acme & Co"}, engine.Context("page")); diff != "" {
		t.Fatalf("prepare mutated the registry (-want +got):\n%s", diff)
	}
}

func TestEngine_RenderWithPongo(t *testing.T) {
	renderer, err := pongo.New(pongo.WithFS(fstest.MapFS{
		"admin/home.tpl": {Data: []byte(`{{ site }}: {{ title }}{% with ctx=view_context("admin/users") %} [{{ ctx.section }}]{% endwith %}`)},
	}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	engine := viewdata.New(viewdata.WithRenderer(renderer))
	engine.AddContext(viewcontext.NewGlobal(map[string]any{"site": "Acme"}))
	engine.AddContext(mustPattern(t, "^admin/", map[string]any{"section": "admin"}))

	got, err := engine.Render("admin/home", map[string]any{"title": "Home"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "Acme: Home [admin]"; got != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestEngine_AutoEscapingRendererSkipsNormalizerEscape(t *testing.T) {
	renderer, err := pongo.New(pongo.WithFS(fstest.MapFS{
		"page.tpl": {Data: []byte(`{{ title }}{% with ctx=view_context("page") %}|{{ ctx.site }}{% endwith %}`)},
	}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	engine := viewdata.New(
		viewdata.WithRenderer(renderer),
		viewdata.WithNormalizeOptions(normalize.WithEscape(true)),
	)
	engine.AddContext(viewcontext.NewGlobal(map[string]any{"site": "A&B"}))

	got, err := engine.Render("page", map[string]any{"title": "<Home>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "&lt;Home&gt;|A&amp;B"; got != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, got)
	}

	if prepared := engine.Prepare("page", map[string]any{"title": "<Home>"}); prepared["title"] != "&lt;Home&gt;" {
		t.Fatalf("expected Prepare to keep escaping, got %#v", prepared["title"])
	}
}

func TestEngine_RenderWithoutRenderer(t *testing.T) {
	engine := viewdata.New()
	if _, err := engine.Render("home", nil); !errors.Is(err, viewdata.ErrNoRenderer) {
		t.Fatalf("expected ErrNoRenderer, got %v", err)
	}
}

func TestEngine_RenderWithNamedRenderers(t *testing.T) {
	html := &stubRenderer{}
	text := &stubRenderer{err: errors.New("text renderer down")}
	engine := viewdata.New(
		viewdata.WithNamedRenderer("html", html),
		viewdata.WithNamedRenderer("text", text),
		viewdata.WithDefaultRenderer("html"),
	)

	got, err := engine.Render("home", nil)
	if err != nil {
		t.Fatalf("render default: %v", err)
	}
	if got != "home" {
		t.Fatalf("expected stub output, got %q", got)
	}
	if _, err := engine.RenderWith("text", "home", nil); err == nil {
		t.Fatalf("expected text renderer error")
	}
	if _, err := engine.RenderWith("pdf", "home", nil); err == nil {
		t.Fatalf("expected unknown renderer error")
	}
	if html.globals == nil || text.globals == nil {
		t.Fatalf("expected view_context on every renderer")
	}

	dup := viewdata.New(viewdata.WithNamedRenderer("html", html), viewdata.WithNamedRenderer("html", text))
	if _, err := dup.Render("home", nil); err == nil {
		t.Fatalf("expected duplicate renderer registration to surface")
	}
}

func TestEngine_RenderPropagatesRendererErrors(t *testing.T) {
	boom := errors.New("boom")
	reg := prometheus.NewRegistry()
	engine := viewdata.New(
		viewdata.WithRenderer(&stubRenderer{err: boom}),
		viewdata.WithMetrics(reg),
	)

	if _, err := engine.Render("home", nil); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped renderer error, got %v", err)
	}
	if got := testutil.CollectAndCount(reg, "viewdata_renders_total"); got != 1 {
		t.Fatalf("expected one render series, got %d", got)
	}
}

func TestEngine_ContextRecordsMatchedLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	engine := viewdata.New(viewdata.WithMetrics(reg))
	engine.AddContext(mustLiteral(t, "home", map[string]any{"x": 1}))

	engine.Context("home")
	if got := testutil.CollectAndCount(reg, "viewdata_context_resolves_total"); got != 1 {
		t.Fatalf("expected one resolve series, got %d", got)
	}
	engine.Context("other")
	if got := testutil.CollectAndCount(reg, "viewdata_context_resolves_total"); got != 2 {
		t.Fatalf("expected matched and unmatched series, got %d", got)
	}
}

func TestEngine_RegistersViewContextGlobal(t *testing.T) {
	stub := &stubRenderer{}
	engine := viewdata.New(viewdata.WithRenderer(stub))
	engine.AddContext(viewcontext.NewGlobal(map[string]any{
		"menu": tree.NewMap(tree.Pair{Key: "a", Value: 1}),
	}))

	fn, ok := stub.globals[viewdata.ViewContextFunc].(func(any) (map[string]any, error))
	if !ok {
		t.Fatalf("view_context global not registered: %#v", stub.globals)
	}

	got, err := fn("anything")
	if err != nil {
		t.Fatalf("view_context: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"menu": map[string]any{"a": 1}}, got); diff != "" {
		t.Fatalf("view_context mismatch (-want +got):\n%s", diff)
	}

	if _, err := fn(42); !errors.Is(err, viewcontext.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestEngine_GlobalRegistrationFailureSurfacesOnRender(t *testing.T) {
	engine := viewdata.New(viewdata.WithRenderer(&stubRenderer{globalErr: errors.New("locked")}))
	if _, err := engine.Render("home", nil); err == nil {
		t.Fatalf("expected initialisation error")
	}
}

func TestEngine_LoadContexts(t *testing.T) {
	engine := viewdata.New()
	err := engine.LoadContexts(fstest.MapFS{
		"contexts.yaml": {Data: []byte("contexts:\n  - kind: literal\n    needle: user\n    data:\n      section: users\n")},
	})
	if err != nil {
		t.Fatalf("load contexts: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"section": "users"}, engine.Context("admin/user/list")); diff != "" {
		t.Fatalf("loaded context mismatch (-want +got):\n%s", diff)
	}
}

func TestFacade(t *testing.T) {
	if got := viewdata.Normalize(42, false, nil, true); got != "42" {
		t.Fatalf("expected stringified 42, got %#v", got)
	}
	escaped := viewdata.Escape(map[string]any{"a": "<x>"})
	if diff := cmp.Diff(map[string]any{"a": "&lt;x&gt;"}, escaped); diff != "" {
		t.Fatalf("escape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"a": "<x>"}, viewdata.Unescape(escaped)); diff != "" {
		t.Fatalf("unescape mismatch (-want +got):\n%s", diff)
	}
}

type stubRenderer struct {
	err       error
	globalErr error
	globals   map[string]any
}

var _ template.TemplateRenderer = (*stubRenderer)(nil)

func (s *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return name, nil
}

func (s *stubRenderer) RenderString(content string, data any, out ...io.Writer) (string, error) {
	return s.Render(content, data, out...)
}

func (s *stubRenderer) RegisterFilter(string, template.FilterFunc) error { return nil }

func (s *stubRenderer) GlobalContext(data any) error {
	if s.globalErr != nil {
		return s.globalErr
	}
	s.globals, _ = data.(map[string]any)
	return nil
}

func mustLiteral(t *testing.T, needle string, payload map[string]any) viewcontext.Rule {
	t.Helper()
	rule, err := viewcontext.NewLiteral(needle, payload)
	if err != nil {
		t.Fatalf("literal rule: %v", err)
	}
	return rule
}

func mustPattern(t *testing.T, needle string, payload map[string]any) viewcontext.Rule {
	t.Helper()
	rule, err := viewcontext.NewPattern(needle, payload)
	if err != nil {
		t.Fatalf("pattern rule: %v", err)
	}
	return rule
}
