package notify

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

// dispatchTimeout bounds one notification attempt. Long enough for a sound
// file to play, short enough that a wedged tool never holds up the caller.
const dispatchTimeout = 5 * time.Second

// Handler dispatches desktop notifications for finished generation jobs.
// With notifications disabled, in CI, or without a TTY it no-ops on all
// calls.
type Handler struct {
	config Config
	sender Sender
}

// NewHandler creates a notification handler with the given configuration.
func NewHandler(config Config) *Handler {
	return &Handler{config: config, sender: NewSender()}
}

// NewHandlerWithSender creates a handler with a custom sender (for testing).
func NewHandlerWithSender(config Config, sender Sender) *Handler {
	return &Handler{config: config, sender: sender}
}

// GenerationFinished notifies that a generation job ended, with its outcome
// and duration.
func (h *Handler) GenerationFinished(model string, success bool, duration time.Duration) {
	if !h.enabled() {
		return
	}

	notifType := TypeSuccess
	status := "completed"
	if !success {
		notifType = TypeFailure
		status = "failed"
	}

	h.dispatch(Notification{
		Title:            "automaker",
		Message:          fmt.Sprintf("Generation with %s %s (%s)", model, status, formatDuration(duration)),
		NotificationType: notifType,
	})
}

// enabled checks whether notifications should be sent at all: disabled
// config, CI environments, and non-interactive sessions all suppress them.
func (h *Handler) enabled() bool {
	return h.config.Enabled && !isCI() && isInteractive()
}

// isCI checks for common CI environment variables.
func isCI() bool {
	ciVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"CIRCLECI",
		"TRAVIS",
		"JENKINS_URL",
		"BUILDKITE",
		"DRONE",
		"TEAMCITY_VERSION",
	}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// isInteractive checks if the session has a terminal attached. Stdout is
// checked first because CLI tools often have stdin piped while stdout stays
// connected to the terminal.
func isInteractive() bool {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return true
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return true
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// dispatch sends a notification asynchronously with a timeout. Failures are
// silent; a notification must never fail or block a run.
func (h *Handler) dispatch(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.send(n)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (h *Handler) send(n Notification) {
	switch h.config.Type {
	case OutputSound:
		_ = h.sender.SendSound(h.config.SoundFile)
	case OutputVisual:
		_ = h.sender.SendVisual(n)
	default:
		_ = h.sender.SendVisual(n)
		_ = h.sender.SendSound(h.config.SoundFile)
	}
}

// formatDuration formats a duration for display in notifications
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}
