package provider

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies provider failures so callers can react appropriately:
// a missing binary needs setup guidance, expired credentials need a login
// prompt, and a cooperative abort is not a failure at all.
type ErrorKind string

const (
	// KindNotInstalled means the backend executable or runtime is missing.
	KindNotInstalled ErrorKind = "not_installed"

	// KindNotAuthenticated means credentials are missing or expired.
	KindNotAuthenticated ErrorKind = "not_authenticated"

	// KindExecutionError covers nonzero exits, malformed output and
	// unexpected process death.
	KindExecutionError ErrorKind = "execution_error"

	// KindCancelled marks a cooperative abort. Callers must not report it
	// as a failure.
	KindCancelled ErrorKind = "cancelled"
)

// Error is a classified provider failure. Diagnostic holds captured backend
// output (typically a stderr tail) when available.
type Error struct {
	Kind       ErrorKind
	Provider   string
	Message    string
	Diagnostic string
	Err        error
}

func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a classified provider error.
func NewError(kind ErrorKind, providerName, message string) *Error {
	return &Error{Kind: kind, Provider: providerName, Message: message}
}

// WrapError classifies an underlying error. Context cancellation always wins
// over the suggested kind so callers never mistake an abort for a failure.
func WrapError(kind ErrorKind, providerName string, err error) *Error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = KindCancelled
	}
	return &Error{Kind: kind, Provider: providerName, Message: err.Error(), Err: err}
}

// KindOf extracts the classification from an error chain. Unclassified
// errors report KindExecutionError; context cancellation reports
// KindCancelled.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCancelled
	}
	return KindExecutionError
}

// IsCancelled reports whether the error represents a cooperative abort.
func IsCancelled(err error) bool {
	return KindOf(err) == KindCancelled
}
