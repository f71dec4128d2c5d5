package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	viewdata "github.com/goliatone/go-viewdata"
	"github.com/goliatone/go-viewdata/pkg/normalize"
	"github.com/goliatone/go-viewdata/pkg/viewcontext"
)

// newEngine builds an engine with the configured normalizer and every rule
// source loaded in order.
func (o *options) newEngine(extra ...viewdata.Option) (*viewdata.Engine, error) {
	engineOpts := append([]viewdata.Option{
		viewdata.WithLogger(o.logger),
		viewdata.WithNormalizeOptions(
			normalize.WithEscape(o.config.Escape),
			normalize.WithStringify(o.config.Stringify),
		),
	}, extra...)
	engine := viewdata.New(engineOpts...)

	for _, source := range o.config.Rules {
		if err := loadRules(engine, source); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

func loadRules(engine *viewdata.Engine, source string) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("rules %s: %w", source, err)
	}
	if info.IsDir() {
		return engine.LoadContexts(os.DirFS(source))
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("rules %s: %w", source, err)
	}
	rules, err := viewcontext.ParseRules(data, source)
	if err != nil {
		return err
	}
	engine.AddContext(rules...)
	return nil
}

// decodeDocument reads JSON or YAML. JSON numbers stay exact through
// json.Number.
func decodeDocument(data []byte, format string) (any, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		var out any
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		return out, nil
	case "json", "":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		var out any
		if err := decoder.Decode(&out); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

func readDataFile(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	doc, err := decodeDocument(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	mapping, ok := doc.(map[string]any)
	if !ok && doc != nil {
		return nil, fmt.Errorf("%s: render data must be a mapping, got %T", path, doc)
	}
	return mapping, nil
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(value)
}
