package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestWrapError(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		kind     ErrorKind
		err      error
		wantKind ErrorKind
	}{
		"execution error passes through": {
			kind:     KindExecutionError,
			err:      errors.New("exit status 1"),
			wantKind: KindExecutionError,
		},
		"context canceled overrides kind": {
			kind:     KindExecutionError,
			err:      fmt.Errorf("wait: %w", context.Canceled),
			wantKind: KindCancelled,
		},
		"deadline exceeded overrides kind": {
			kind:     KindNotAuthenticated,
			err:      context.DeadlineExceeded,
			wantKind: KindCancelled,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := WrapError(tt.kind, "codex", tt.err)
			if got.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", got.Kind, tt.wantKind)
			}
			if !errors.Is(got, tt.err) {
				t.Error("wrapped error should unwrap to the original")
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("query: %w", NewError(KindNotInstalled, "gemini", "binary missing"))
	if got := KindOf(wrapped); got != KindNotInstalled {
		t.Errorf("KindOf(wrapped) = %q, want %q", got, KindNotInstalled)
	}
	if got := KindOf(errors.New("plain")); got != KindExecutionError {
		t.Errorf("KindOf(plain) = %q, want %q", got, KindExecutionError)
	}
	if got := KindOf(context.Canceled); got != KindCancelled {
		t.Errorf("KindOf(canceled) = %q, want %q", got, KindCancelled)
	}
}

func TestIsCancelled(t *testing.T) {
	t.Parallel()

	if !IsCancelled(NewError(KindCancelled, "codex", "aborted")) {
		t.Error("cancelled error should report cancelled")
	}
	if IsCancelled(NewError(KindExecutionError, "codex", "crashed")) {
		t.Error("execution error should not report cancelled")
	}
}

func TestErrorString(t *testing.T) {
	t.Parallel()

	err := NewError(KindNotAuthenticated, "anthropic", "no API key")
	if got, want := err.Error(), "anthropic: no API key"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	bare := &Error{Kind: KindExecutionError, Message: "boom"}
	if got := bare.Error(); got != "boom" {
		t.Errorf("Error() = %q, want %q", got, "boom")
	}
}
