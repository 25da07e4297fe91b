package advisor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSession is wrapped by PreconditionError when Refine is called without
// an open session.
var ErrNoSession = errors.New("advisor: no open session")

// Operations an error can belong to.
const (
	OpGenerate = "generate"
	OpRefine   = "refine"
)

// ConfigurationError means the provider credential is missing. No provider
// call was made.
type ConfigurationError struct {
	Op  string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("advisor %s: configuration: %v", e.Op, e.Err)
}
func (e *ConfigurationError) Unwrap() error { return e.Err }

// ProviderError wraps a failure of the provider call itself.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("advisor %s: provider: %v", e.Op, e.Err)
}
func (e *ProviderError) Unwrap() error { return e.Err }

// ParseError reports a reply that could not be turned into a Setup. Raw is
// the reply text as received.
type ParseError struct {
	Op       string
	Raw      string
	Problems []string
	Err      error
}

func (e *ParseError) Error() string {
	if len(e.Problems) > 0 {
		return fmt.Sprintf("advisor %s: parse: %s", e.Op, strings.Join(e.Problems, "; "))
	}
	return fmt.Sprintf("advisor %s: parse: %v", e.Op, e.Err)
}
func (e *ParseError) Unwrap() error { return e.Err }

// PreconditionError means Refine was called without a usable session.
type PreconditionError struct {
	Err error
}

func (e *PreconditionError) Error() string { return "advisor refine: " + e.Err.Error() }
func (e *PreconditionError) Unwrap() error { return e.Err }

// ValidationError rejects empty selections or feedback.
type ValidationError struct {
	Op    string
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("advisor %s: %s is required", e.Op, e.Field)
}
