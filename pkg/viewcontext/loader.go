package viewcontext

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

type documentFile struct {
	Contexts []ruleEntry `mapstructure:"contexts"`
}

type ruleEntry struct {
	Kind   string `mapstructure:"kind" validate:"required"`
	Needle any    `mapstructure:"needle" validate:"required_unless=Kind global"`
	Data   any    `mapstructure:"data"`
}

// LoadFS walks fsys in lexical order and parses every JSON or YAML rule file.
// Rules are returned in file order, then in declaration order within a file.
// A nil filesystem yields no rules.
func LoadFS(fsys fs.FS) ([]Rule, error) {
	if fsys == nil {
		return nil, nil
	}

	var rules []Rule
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isRuleFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("viewcontext: read %s: %w", path, err)
		}
		parsed, err := ParseRules(data, path)
		if err != nil {
			return err
		}
		rules = append(rules, parsed...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// ParseRules decodes a rule document:
//
//	contexts:
//	  - kind: global
//	    data: {site: Acme}
//	  - kind: pattern
//	    needle: ^admin/
//	    data: {layout: admin}
//
// source names the document in error messages.
func ParseRules(data []byte, source string) ([]Rule, error) {
	raw, err := parseDocument(data, source)
	if err != nil {
		return nil, err
	}

	var doc documentFile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &doc,
	})
	if err != nil {
		return nil, fmt.Errorf("viewcontext: decoder for %s: %w", source, err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRule, source, err)
	}

	rules := make([]Rule, 0, len(doc.Contexts))
	for i, entry := range doc.Contexts {
		entry.Kind = strings.ToLower(strings.TrimSpace(entry.Kind))
		if err := ruleValidator().Struct(entry); err != nil {
			return nil, fmt.Errorf("%w: %s: context %d: %v", ErrInvalidRule, source, i, err)
		}
		kind, err := ParseKind(entry.Kind)
		if err != nil {
			return nil, fmt.Errorf("viewcontext: %s: context %d: %w", source, i, err)
		}
		rule, err := NewRule(kind, entry.Needle, entry.Data)
		if err != nil {
			return nil, fmt.Errorf("viewcontext: %s: context %d: %w", source, i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func parseDocument(data []byte, source string) (map[string]any, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("viewcontext: file %s is empty", source)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = nil
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return nil, fmt.Errorf("viewcontext: parse %s: invalid JSON or YAML", source)
}

func isRuleFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func ruleValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}
