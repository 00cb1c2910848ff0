package provider

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AuthSpec describes how a backend's credentials are discovered: any of the
// listed environment variables, or a JSON credentials file written by the
// backend's own login flow.
type AuthSpec struct {
	// EnvVars are environment variable names that each individually satisfy
	// authentication (API keys).
	EnvVars []string

	// CredentialsFile is a path relative to the home directory (e.g.
	// ".codex/auth.json"). Presence of a non-empty token field counts as
	// authenticated; the backend refreshes its own tokens.
	CredentialsFile string

	// TokenField is the top-level JSON field expected to hold a token in
	// CredentialsFile. Empty means any parseable non-empty file counts.
	TokenField string
}

// AuthResult is the outcome of a credential probe.
type AuthResult struct {
	Authenticated bool

	// Hint is actionable guidance when not authenticated.
	Hint string
}

// credentialsHomeOverride lets tests redirect credential file lookups.
var credentialsHomeOverride string

// Detect probes the environment and credentials file. The probe is read-only
// and degrades gracefully when the file format changes under us.
func (a AuthSpec) Detect() AuthResult {
	for _, envVar := range a.EnvVars {
		if os.Getenv(envVar) != "" {
			return AuthResult{Authenticated: true}
		}
	}

	if a.CredentialsFile != "" && a.hasCredentialsFile() {
		return AuthResult{Authenticated: true}
	}

	return AuthResult{Hint: a.hint()}
}

func (a AuthSpec) hasCredentialsFile() bool {
	home := credentialsHomeOverride
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return false
		}
	}

	data, err := os.ReadFile(filepath.Join(home, a.CredentialsFile))
	if err != nil {
		return false
	}

	if a.TokenField == "" {
		return len(data) > 0
	}

	// Only the token field matters; unknown fields are ignored for forward
	// compatibility with the backend's own format changes.
	var creds map[string]json.RawMessage
	if err := json.Unmarshal(data, &creds); err != nil {
		return false
	}
	raw, found := creds[a.TokenField]
	if !found {
		return false
	}
	var token string
	if err := json.Unmarshal(raw, &token); err != nil {
		// Token fields may be nested objects; presence is enough then.
		return string(raw) != "null" && len(raw) > 2
	}
	return token != ""
}

func (a AuthSpec) hint() string {
	var sources []string
	if len(a.EnvVars) > 0 {
		sources = append(sources, fmt.Sprintf("set %s", strings.Join(a.EnvVars, " or ")))
	}
	if a.CredentialsFile != "" {
		sources = append(sources, fmt.Sprintf("log in with the backend CLI (writes ~/%s)", a.CredentialsFile))
	}
	if len(sources) == 0 {
		return "no credentials required"
	}
	return "not authenticated: " + strings.Join(sources, ", or ")
}
