package testsupport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewdata/pkg/tree"
	"github.com/goliatone/go-viewdata/pkg/viewcontext"
)

// LoadRegistry reads a rules document and returns a populated registry.
// Testing helpers fail the test on error to keep contract tests concise.
func LoadRegistry(t *testing.T, path string) *viewcontext.Registry {
	t.Helper()

	registry, err := LoadRegistryFromPath(path)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return registry
}

// LoadRegistryFromPath returns a Registry without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadRegistryFromPath(path string) (*viewcontext.Registry, error) {
	if path == "" {
		return nil, errors.New("testsupport: rules path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read rules: %w", err)
	}
	rules, err := viewcontext.ParseRules(data, path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: parse rules: %w", err)
	}
	return viewcontext.NewRegistry(rules...), nil
}

// MustLoadJSON decodes a JSON golden file into a generic value.
func MustLoadJSON(t *testing.T, path string) any {
	t.Helper()

	var out any
	if err := json.Unmarshal(MustReadGolden(t, path), &out); err != nil {
		t.Fatalf("unmarshal golden: %v", err)
	}
	return out
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
// Ordered maps keep their key order in the output.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	WriteMaybeGolden(t, path, append(payload, '\n'))
}

// CompareGolden returns a diff string if the values differ. Ordered maps are
// compared as plain string keyed maps, matching what a JSON golden decodes to.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, jsonShape(got))
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}

// jsonShape mirrors the value through encoding/json so integers compare as
// float64, the same way a decoded golden represents them.
func jsonShape(value any) any {
	data, err := json.Marshal(tree.Plain(value))
	if err != nil {
		return value
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return value
	}
	return out
}
