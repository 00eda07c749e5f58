// Package apperror tags errors as client-correctable or server-side so the
// outer layers can report them without inspecting messages.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation  Kind = "validation"
	KindUpstream    Kind = "upstream"
	KindPersistence Kind = "persistence"
	KindIntegrity   Kind = "integrity"
)

// Error carries a Kind next to the wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}

	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a client error from a message.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Err: fmt.Errorf(format, args...)}
}

// Wrap tags err with kind. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}

	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the outermost Kind in the chain, or "" when err is untagged.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return ""
}

// IsClient reports whether err is something the caller can correct.
func IsClient(err error) bool {
	return KindOf(err) == KindValidation
}
