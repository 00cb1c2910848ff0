package cli

import (
	"fmt"

	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/provider"
)

// Exit codes for the automaker CLI
// These codes support programmatic composition and CI/CD integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitGenerationFailed indicates the generation ended in an error event
	ExitGenerationFailed = 1

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3

	// ExitNotInstalled indicates a required provider backend is missing
	ExitNotInstalled = 4

	// ExitNotAuthenticated indicates a provider backend has no credentials
	ExitNotAuthenticated = 5

	// ExitCancelled indicates the generation was cancelled before finishing
	ExitCancelled = 6
)

// exitError is a custom error type that carries an exit code.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// NewExitError creates a new exit error with the given code.
func NewExitError(code int) error {
	return &exitError{code: code}
}

// IsExitError reports whether err carries an explicit exit code.
func IsExitError(err error) bool {
	_, ok := err.(*exitError)
	return ok
}

// ExitCode returns the exit code from an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if e, ok := err.(*exitError); ok {
		return e.code
	}
	return ExitGenerationFailed
}

// exitCodeForKind maps a provider failure classification to an exit code.
func exitCodeForKind(kind provider.ErrorKind) int {
	switch kind {
	case provider.KindNotInstalled:
		return ExitNotInstalled
	case provider.KindNotAuthenticated:
		return ExitNotAuthenticated
	case provider.KindCancelled:
		return ExitCancelled
	default:
		return ExitGenerationFailed
	}
}
