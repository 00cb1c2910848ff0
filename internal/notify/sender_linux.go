//go:build linux

package notify

import (
	"os"
	"os/exec"
)

// linuxSender delivers notifications through notify-send and paplay.
// Visual delivery additionally requires a display: serve mode commonly
// runs on headless boxes where notify-send would just error.
type linuxSender struct {
	visual bool
	sound  bool
}

func newLinuxSender() Sender {
	return &linuxSender{
		visual: toolAvailable("notify-send") && hasDisplay(),
		sound:  toolAvailable("paplay"),
	}
}

func newDarwinSender() Sender  { return &noopSender{} }
func newWindowsSender() Sender { return &noopSender{} }

// hasDisplay reports whether an X11 or Wayland session is reachable.
func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

func (s *linuxSender) SendVisual(n Notification) error {
	if !s.visual {
		return nil
	}
	urgency := "normal"
	if n.NotificationType == TypeFailure {
		urgency = "critical"
	}
	return exec.Command("notify-send", "-a", "automaker", "-u", urgency, n.Title, n.Message).Run()
}

func (s *linuxSender) SendSound(soundFile string) error {
	if !s.sound {
		return nil
	}
	// There is no system default sound to fall back to on Linux.
	file := ValidateSoundFile(soundFile)
	if file == "" {
		return nil
	}
	return exec.Command("paplay", file).Run()
}

func (s *linuxSender) VisualAvailable() bool { return s.visual }
func (s *linuxSender) SoundAvailable() bool  { return s.sound }
