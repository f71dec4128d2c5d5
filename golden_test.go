package viewdata_test

import (
	"io"
	"os"
	"testing"

	viewdata "github.com/goliatone/go-viewdata"
	"github.com/goliatone/go-viewdata/pkg/render/template/pongo"
	"github.com/goliatone/go-viewdata/pkg/testsupport"
)

func adminUsersData() map[string]any {
	return map[string]any{
		"title":   "All <users>",
		"count":   3,
		"filters": map[int]string{2: "b", 1: "a"},
	}
}

func TestEngine_PrepareGolden(t *testing.T) {
	engine := viewdata.New(viewdata.WithRegistry(testsupport.LoadRegistry(t, "testdata/contexts.yaml")))

	got := engine.Prepare("admin/users", adminUsersData())

	const golden = "testdata/prepared_admin_users.json"
	testsupport.WriteGolden(t, golden, got)
	if diff := testsupport.CompareGolden(testsupport.MustLoadJSON(t, golden), got); diff != "" {
		t.Fatalf("prepared golden mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_RenderGolden(t *testing.T) {
	renderer, err := pongo.New(pongo.WithFS(os.DirFS("testdata/templates")))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	engine := viewdata.New(
		viewdata.WithRegistry(testsupport.LoadRegistry(t, "testdata/contexts.yaml")),
		viewdata.WithRenderer(renderer),
	)

	got, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.Render("admin/users", adminUsersData(), w)
	})
	if got != written {
		t.Fatalf("writer mismatch\nreturned: %q\n written: %q", got, written)
	}

	const golden = "testdata/admin_users.golden.html"
	if testsupport.WriteMaybeGolden(t, golden, []byte(got)) {
		return
	}
	if want := testsupport.MustReadGoldenString(t, golden); got != want {
		t.Fatalf("render golden mismatch\nwant: %q\n got: %q", want, got)
	}
}
