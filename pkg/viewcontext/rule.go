package viewcontext

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// Kind selects how a Rule matches template identifiers.
type Kind string

const (
	// KindGlobal rules match every identifier.
	KindGlobal Kind = "global"
	// KindLiteral rules match identifiers containing the needle.
	KindLiteral Kind = "literal"
	// KindPattern rules match identifiers the needle, read as a regular
	// expression, finds a match in.
	KindPattern Kind = "pattern"
)

// defaultMatchTimeout bounds a single pattern evaluation. A match that times
// out is reported as no match.
const defaultMatchTimeout = 100 * time.Millisecond

// PatternOption customises a pattern rule.
type PatternOption func(*regexp2.Regexp)

// WithMatchTimeout overrides the per match timeout of a pattern rule.
// Non-positive durations keep the default.
func WithMatchTimeout(d time.Duration) PatternOption {
	return func(re *regexp2.Regexp) {
		if d > 0 {
			re.MatchTimeout = d
		}
	}
}

// ParseKind maps a textual kind onto a Kind.
func ParseKind(raw string) (Kind, error) {
	switch kind := Kind(strings.ToLower(strings.TrimSpace(raw))); kind {
	case KindGlobal, KindLiteral, KindPattern:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidRule, raw)
	}
}

// Rule binds a payload to the template identifiers it matches. Rules are
// immutable once built; the zero value matches nothing.
type Rule struct {
	kind    Kind
	needle  string
	payload map[string]any
	pattern *regexp2.Regexp
}

// NewGlobal builds a rule matching every template.
func NewGlobal(payload map[string]any) Rule {
	return Rule{kind: KindGlobal, payload: clonePayload(payload)}
}

// NewLiteral builds a rule matching identifiers that contain needle. The
// comparison is case sensitive.
func NewLiteral(needle string, payload map[string]any) (Rule, error) {
	if needle == "" {
		return Rule{}, fmt.Errorf("%w: literal needle is required", ErrInvalidRule)
	}
	return Rule{kind: KindLiteral, needle: needle, payload: clonePayload(payload)}, nil
}

// NewPattern builds a rule matching identifiers where needle, compiled as a
// Perl compatible regular expression, matches.
func NewPattern(needle string, payload map[string]any, options ...PatternOption) (Rule, error) {
	if needle == "" {
		return Rule{}, fmt.Errorf("%w: pattern needle is required", ErrInvalidRule)
	}
	re, err := regexp2.Compile(needle, regexp2.None)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: compile pattern %q: %w", ErrInvalidRule, needle, err)
	}
	re.MatchTimeout = defaultMatchTimeout
	for _, opt := range options {
		if opt != nil {
			opt(re)
		}
	}
	return Rule{kind: KindPattern, needle: needle, payload: clonePayload(payload), pattern: re}, nil
}

// NewRule builds a rule from untyped input such as decoded configuration.
// The needle must be text for literal and pattern kinds and is ignored for
// global rules. The payload must be a string keyed mapping; nil is treated
// as empty.
func NewRule(kind Kind, needle any, payload any) (Rule, error) {
	data, err := toPayload(payload)
	if err != nil {
		return Rule{}, err
	}

	switch kind {
	case KindGlobal:
		return NewGlobal(data), nil
	case KindLiteral, KindPattern:
	default:
		return Rule{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidRule, kind)
	}

	text, ok := asText(needle)
	if !ok {
		return Rule{}, fmt.Errorf("%w: needle must be a string, got %T", ErrInvalidRule, needle)
	}
	if kind == KindLiteral {
		return NewLiteral(text, data)
	}
	return NewPattern(text, data)
}

// Kind reports the rule kind.
func (r Rule) Kind() Kind { return r.kind }

// Needle returns the literal or pattern text. Global rules return "".
func (r Rule) Needle() string { return r.needle }

// Payload returns a shallow copy of the rule data.
func (r Rule) Payload() map[string]any {
	return clonePayload(r.payload)
}

// Matches reports whether the rule applies to identifier.
func (r Rule) Matches(identifier string) bool {
	switch r.kind {
	case KindGlobal:
		return true
	case KindLiteral:
		return strings.Contains(identifier, r.needle)
	case KindPattern:
		if r.pattern == nil {
			return false
		}
		ok, err := r.pattern.MatchString(identifier)
		return err == nil && ok
	default:
		return false
	}
}

func (r Rule) String() string {
	if r.kind == KindGlobal {
		return string(r.kind)
	}
	return fmt.Sprintf("%s(%q)", r.kind, r.needle)
}

func clonePayload(payload map[string]any) map[string]any {
	if len(payload) == 0 {
		return map[string]any{}
	}
	return maps.Clone(payload)
}

func toPayload(payload any) (map[string]any, error) {
	switch v := payload.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return clonePayload(v), nil
	}

	rv := reflect.ValueOf(payload)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("%w: expected a string keyed mapping, got %T", ErrInvalidPayload, payload)
	}
	out := make(map[string]any, rv.Len())
	entries := rv.MapRange()
	for entries.Next() {
		out[entries.Key().String()] = entries.Value().Interface()
	}
	return out, nil
}

func asText(value any) (string, bool) {
	if text, ok := value.(string); ok {
		return text, true
	}
	if value == nil {
		return "", false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}
