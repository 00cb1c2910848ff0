// Package notify provides cross-platform desktop notifications for finished
// generation jobs.
//
// Notifications use only os/exec to call native OS tools, so the package has
// no CGO or GUI framework dependency and degrades gracefully when the tools
// are missing:
//
//   - macOS: osascript for visual notifications, afplay for sound
//   - Linux: notify-send for visual notifications, paplay for sound
//   - Windows: PowerShell for toast notifications and sound
//
// Dispatch is asynchronous with a timeout; a wedged notification tool can
// never block a run.
package notify
