// Package provider abstracts heterogeneous AI coding-agent backends behind
// one streaming execution contract. It enables switching between an
// SDK-based agent, external CLI agent tools and a browser-automated agent
// without touching the orchestration layer above.
package provider

import (
	"context"
)

// Provider is one backend integration. All methods must be safe for
// concurrent use; one Provider instance may serve many queries.
type Provider interface {
	// Name returns the unique identifier for the backend (e.g. "anthropic",
	// "codex"). Must be lowercase alphanumeric.
	Name() string

	// ExecuteQuery runs one generation query and streams normalized
	// messages to msgs in the order the backend produced them. The provider
	// never closes msgs; the caller owns the channel lifecycle.
	//
	// ExecuteQuery returns when the stream ends: nil after a terminal
	// result message was delivered, or a classified *Error otherwise. Once
	// ctx is cancelled the provider stops producing within a bounded grace
	// period; callers must treat an abrupt end plus a cancelled context as
	// a clean abort, not a failure.
	ExecuteQuery(ctx context.Context, opts ExecuteOptions, msgs chan<- Message) error

	// CheckInstallation probes backend availability and authentication
	// without starting a generation.
	CheckInstallation(ctx context.Context) InstallationStatus
}

// ThinkingLevel hints the backend toward extended reasoning effort.
type ThinkingLevel string

const (
	ThinkingNone   ThinkingLevel = ""
	ThinkingLow    ThinkingLevel = "low"
	ThinkingMedium ThinkingLevel = "medium"
	ThinkingHigh   ThinkingLevel = "high"
)

// ExecuteOptions is the immutable per-call configuration for one query.
// Cancellation travels on the context passed to ExecuteQuery.
type ExecuteOptions struct {
	// Prompt is the opaque natural-language request.
	Prompt string

	// Model selects the backend model. The factory routed on it already;
	// providers pass it through to the backend.
	Model string

	// WorkDir is the working directory the agent operates in.
	WorkDir string

	// SystemPrompt optionally overrides the backend's system prompt.
	SystemPrompt string

	// MaxTurns bounds the agent's conversation turns; CLI-backed providers
	// stop the agent once the bound is reached. Zero leaves the agent
	// unbounded.
	MaxTurns int

	// AllowedTools names the tools the backend may invoke. Empty means no
	// tool-like capability at all; this is how text-only generation is
	// enforced.
	AllowedTools []string

	// ReadOnly forbids filesystem mutation. Providers must configure the
	// backend so no mutation can occur, regardless of AllowedTools.
	ReadOnly bool

	// Thinking hints extended reasoning where the backend supports it.
	Thinking ThinkingLevel

	// SettingSources optionally names backend setting sources to load:
	// gemini extensions, the codex config profile.
	SettingSources []string

	// SessionID tags the query for backends that track sessions. Empty
	// means the provider generates one.
	SessionID string
}

// EffectiveTools returns the tool allow-list to hand the backend. ReadOnly
// forces it empty: a read-only query must not be able to mutate anything
// even if the caller supplied tools.
func (o ExecuteOptions) EffectiveTools() []string {
	if o.ReadOnly {
		return nil
	}
	return o.AllowedTools
}

// InstallationStatus reports backend availability, produced by probing
// without side effects.
type InstallationStatus struct {
	// Installed indicates the backend binary or runtime is present.
	Installed bool

	// Authenticated indicates usable credentials were found. Only
	// meaningful when Installed is true.
	Authenticated bool

	// Version is the backend version when it can be determined.
	Version string

	// Error carries a human-readable diagnostic when something is wrong.
	Error string
}
