package viewcontext_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewdata/pkg/viewcontext"
)

func TestGlobalRule_MatchesEverything(t *testing.T) {
	rule := viewcontext.NewGlobal(map[string]any{"site": "Acme"})
	for _, identifier := range []string{"", "home", "admin/users", "äöü"} {
		if !rule.Matches(identifier) {
			t.Fatalf("global rule did not match %q", identifier)
		}
	}
	if rule.Kind() != viewcontext.KindGlobal || rule.Needle() != "" {
		t.Fatalf("unexpected rule shape: %v", rule)
	}
}

func TestLiteralRule_SubstringMatch(t *testing.T) {
	rule, err := viewcontext.NewLiteral("user", nil)
	if err != nil {
		t.Fatalf("new literal: %v", err)
	}
	cases := map[string]bool{
		"user/profile":  true,
		"admin/user":    true,
		"user":          true,
		"admin/profile": false,
		"User/profile":  false,
		"":              false,
	}
	for identifier, want := range cases {
		if got := rule.Matches(identifier); got != want {
			t.Fatalf("literal %q matches %q: want %v, got %v", rule.Needle(), identifier, want, got)
		}
	}
}

func TestPatternRule_RegexMatch(t *testing.T) {
	rule, err := viewcontext.NewPattern(`^admin/`, nil)
	if err != nil {
		t.Fatalf("new pattern: %v", err)
	}
	if !rule.Matches("admin/home") {
		t.Fatalf("expected admin/home to match")
	}
	if rule.Matches("home/admin") {
		t.Fatalf("expected home/admin not to match")
	}

	lookahead, err := viewcontext.NewPattern(`^(?!admin/).+\.tpl$`, nil)
	if err != nil {
		t.Fatalf("new pattern with lookahead: %v", err)
	}
	if !lookahead.Matches("home/index.tpl") || lookahead.Matches("admin/index.tpl") {
		t.Fatalf("lookahead pattern matched unexpectedly")
	}
}

func TestPatternRule_TimeoutIsNoMatch(t *testing.T) {
	rule, err := viewcontext.NewPattern(`^(a+)+$`, nil, viewcontext.WithMatchTimeout(time.Millisecond))
	if err != nil {
		t.Fatalf("new pattern: %v", err)
	}
	if rule.Matches(strings.Repeat("a", 40) + "!") {
		t.Fatalf("expected timed out match to report no match")
	}
	if !rule.Matches("aaa") {
		t.Fatalf("expected short input to match")
	}
}

func TestRuleConstruction_Errors(t *testing.T) {
	cases := []struct {
		name    string
		kind    viewcontext.Kind
		needle  any
		payload any
		want    error
	}{
		{name: "non-string needle", kind: viewcontext.KindLiteral, needle: 42, want: viewcontext.ErrInvalidRule},
		{name: "missing needle", kind: viewcontext.KindPattern, needle: nil, want: viewcontext.ErrInvalidRule},
		{name: "empty needle", kind: viewcontext.KindLiteral, needle: "", want: viewcontext.ErrInvalidRule},
		{name: "bad regex", kind: viewcontext.KindPattern, needle: "([a-z", want: viewcontext.ErrInvalidRule},
		{name: "unknown kind", kind: viewcontext.Kind("fuzzy"), needle: "x", want: viewcontext.ErrInvalidRule},
		{name: "list payload", kind: viewcontext.KindGlobal, payload: []any{"x"}, want: viewcontext.ErrInvalidPayload},
		{name: "scalar payload", kind: viewcontext.KindLiteral, needle: "x", payload: "x", want: viewcontext.ErrInvalidPayload},
		{name: "int keyed payload", kind: viewcontext.KindGlobal, payload: map[int]any{1: "x"}, want: viewcontext.ErrInvalidPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := viewcontext.NewRule(tc.kind, tc.needle, tc.payload)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestNewRule_GlobalIgnoresNeedle(t *testing.T) {
	rule, err := viewcontext.NewRule(viewcontext.KindGlobal, 42, map[string]string{"a": "b"})
	if err != nil {
		t.Fatalf("new rule: %v", err)
	}
	if !rule.Matches("anything") {
		t.Fatalf("global rule should match")
	}
	if diff := cmp.Diff(map[string]any{"a": "b"}, rule.Payload()); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestRule_PayloadIsImmutable(t *testing.T) {
	source := map[string]any{"x": 1}
	rule := viewcontext.NewGlobal(source)

	source["x"] = 2
	payload := rule.Payload()
	payload["y"] = 3

	if diff := cmp.Diff(map[string]any{"x": 1}, rule.Payload()); diff != "" {
		t.Fatalf("payload changed (-want +got):\n%s", diff)
	}
}

func TestParseKind(t *testing.T) {
	kind, err := viewcontext.ParseKind(" Pattern ")
	if err != nil || kind != viewcontext.KindPattern {
		t.Fatalf("parse kind: %v %v", kind, err)
	}
	if _, err := viewcontext.ParseKind("prefix"); !errors.Is(err, viewcontext.ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule, got %v", err)
	}
}
