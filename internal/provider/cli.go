package provider

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/spawn"
)

// cliProvider provides the shared implementation for CLI-backed providers.
// Concrete backends supply argument construction and record translation;
// process lifecycle, exit-code policy and failure classification live here.
type cliProvider struct {
	// ProviderName is the unique identifier for this backend.
	ProviderName string

	// Command is the CLI executable name (e.g. "codex", "gemini").
	Command string

	// VersionFlag is the flag that prints the CLI version.
	VersionFlag string

	// Auth describes how credentials are detected for this backend.
	Auth AuthSpec

	// GraceTimeout bounds SIGTERM-to-SIGKILL on cancellation.
	GraceTimeout time.Duration

	// BuildArgs constructs the argument list for one query.
	BuildArgs func(opts ExecuteOptions) []string

	// BuildEnv returns extra environment variables for one query. May be nil.
	BuildEnv func(opts ExecuteOptions) map[string]string

	// Translate converts one stdout record into a Message. ok=false skips
	// the record (CLIs interleave non-protocol noise on stdout).
	Translate func(line []byte) (msg Message, ok bool)
}

func (c *cliProvider) Name() string {
	return c.ProviderName
}

// ExecuteQuery spawns one CLI process and streams translated records.
//
// Exit-code policy: exit 0 with a terminal record is success; exit 0 without
// one means the backend misbehaved; nonzero exit is an execution error with
// stderr attached; a missing binary is not-installed.
func (c *cliProvider) ExecuteQuery(ctx context.Context, opts ExecuteOptions, msgs chan<- Message) error {
	cfg := spawn.Config{
		Command:      c.Command,
		Args:         c.BuildArgs(opts),
		Dir:          opts.WorkDir,
		GraceTimeout: c.GraceTimeout,
	}
	if c.BuildEnv != nil {
		cfg.Env = c.BuildEnv(opts)
	}

	proc, err := spawn.Start(ctx, cfg)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return &Error{
				Kind:     KindNotInstalled,
				Provider: c.ProviderName,
				Message:  fmt.Sprintf("%s CLI not found (install it or check the configured cmd)", c.Command),
				Err:      err,
			}
		}
		return WrapError(KindExecutionError, c.ProviderName, err)
	}
	defer proc.Close()

	sawTerminal := false
	turns := 0
	for line := range proc.Records() {
		msg, ok := c.Translate(line)
		if !ok {
			continue
		}
		select {
		case msgs <- msg:
		case <-ctx.Done():
			return WrapError(KindCancelled, c.ProviderName, ctx.Err())
		}
		if msg.IsTerminal() {
			sawTerminal = true
		}
		if msg.Type == MessageAssistant {
			turns++
			// Neither backend caps its own conversation turns, so the cap
			// is enforced here: stop the agent and end the stream with an
			// empty terminal result, leaving callers the text streamed so
			// far.
			if opts.MaxTurns > 0 && turns >= opts.MaxTurns {
				proc.Close()
				select {
				case msgs <- SuccessResult(""):
				case <-ctx.Done():
					return WrapError(KindCancelled, c.ProviderName, ctx.Err())
				}
				return nil
			}
		}
	}

	waitErr := proc.Wait()

	if ctx.Err() != nil {
		return WrapError(KindCancelled, c.ProviderName, ctx.Err())
	}
	if waitErr != nil {
		stderr := proc.Stderr()
		kind := KindExecutionError
		if looksLikeAuthFailure(stderr) {
			kind = KindNotAuthenticated
		}
		return &Error{
			Kind:       kind,
			Provider:   c.ProviderName,
			Message:    fmt.Sprintf("%s exited with code %d", c.Command, proc.ExitCode()),
			Diagnostic: stderr,
			Err:        waitErr,
		}
	}
	if !sawTerminal {
		return &Error{
			Kind:       KindExecutionError,
			Provider:   c.ProviderName,
			Message:    fmt.Sprintf("%s exited cleanly without a terminal result record", c.Command),
			Diagnostic: proc.Stderr(),
		}
	}
	return nil
}

// CheckInstallation probes the CLI binary, its version, and credentials.
// The probe is read-only and never starts a generation.
func (c *cliProvider) CheckInstallation(ctx context.Context) InstallationStatus {
	status := InstallationStatus{}

	if _, err := exec.LookPath(c.Command); err != nil {
		status.Error = fmt.Sprintf("%s CLI not found (install it or check the configured cmd)", c.Command)
		return status
	}
	status.Installed = true

	if c.VersionFlag != "" {
		versionCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		out, err := exec.CommandContext(versionCtx, c.Command, c.VersionFlag).Output()
		if err != nil {
			log.Debug().
				Str("component", "provider").
				Str("provider", c.ProviderName).
				Err(err).
				Msg("version probe failed")
		} else {
			status.Version = strings.TrimSpace(string(out))
		}
	}

	auth := c.Auth.Detect()
	status.Authenticated = auth.Authenticated
	if !auth.Authenticated {
		status.Error = auth.Hint
	}
	return status
}

// authFailureMarkers are stderr fragments that indicate a credential problem
// rather than a runtime failure. Kept lowercase; matching is case-insensitive.
var authFailureMarkers = []string{
	"not logged in",
	"not authenticated",
	"unauthorized",
	"invalid api key",
	"api key not found",
	"credentials",
	"please run /login",
	"401",
}

func looksLikeAuthFailure(stderr string) bool {
	lower := strings.ToLower(stderr)
	for _, marker := range authFailureMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
