package viewcontext

import "errors"

var (
	// ErrInvalidRule reports a rule built with a missing, non-string or
	// uncompilable needle, or with an unknown kind.
	ErrInvalidRule = errors.New("viewcontext: invalid rule")

	// ErrInvalidPayload reports a rule payload that is not a string keyed
	// mapping.
	ErrInvalidPayload = errors.New("viewcontext: invalid payload")

	// ErrInvalidArgument reports a non-text value where a template
	// identifier was required.
	ErrInvalidArgument = errors.New("viewcontext: invalid argument")
)
