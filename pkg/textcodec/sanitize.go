package textcodec

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

// Sanitizer strips markup according to a bluemonday policy before encoding the
// remaining text. Use it in place of HTML when data may carry user supplied
// markup that should never reach a template.
type Sanitizer struct {
	policy *bluemonday.Policy
}

var _ Codec = (*Sanitizer)(nil)

// NewSanitizer wraps policy. A nil policy selects bluemonday's strict policy,
// which removes every element and keeps text only.
func NewSanitizer(policy *bluemonday.Policy) *Sanitizer {
	if policy == nil {
		policy = defaultPolicy()
	}
	return &Sanitizer{policy: policy}
}

// Escape sanitizes text. Text outside allowed elements is entity encoded by
// the policy itself.
func (s *Sanitizer) Escape(text string) string {
	if text == "" {
		return ""
	}
	return s.policy.Sanitize(strings.ToValidUTF8(text, "\uFFFD"))
}

// Unescape decodes entities. Stripped markup is not restored.
func (s *Sanitizer) Unescape(text string) string {
	return html.UnescapeString(text)
}

func defaultPolicy() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}
