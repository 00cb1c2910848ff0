//go:build darwin

package notify

import (
	"fmt"
	"os/exec"
)

// defaultDarwinSound is played when no custom sound file is configured.
const defaultDarwinSound = "/System/Library/Sounds/Glass.aiff"

// darwinSender delivers notifications through osascript and afplay. Both
// ship with macOS, but availability is still probed once so a stripped
// environment degrades to a silent no-op instead of erroring per send.
type darwinSender struct {
	visual bool
	sound  bool
}

func newDarwinSender() Sender {
	return &darwinSender{
		visual: toolAvailable("osascript"),
		sound:  toolAvailable("afplay"),
	}
}

func newLinuxSender() Sender   { return &noopSender{} }
func newWindowsSender() Sender { return &noopSender{} }

func (s *darwinSender) SendVisual(n Notification) error {
	if !s.visual {
		return nil
	}
	script := fmt.Sprintf(`display notification %q with title %q`, n.Message, n.Title)
	return exec.Command("osascript", "-e", script).Run()
}

func (s *darwinSender) SendSound(soundFile string) error {
	if !s.sound {
		return nil
	}
	file := ValidateSoundFile(soundFile)
	if file == "" {
		file = defaultDarwinSound
	}
	return exec.Command("afplay", file).Run()
}

func (s *darwinSender) VisualAvailable() bool { return s.visual }
func (s *darwinSender) SoundAvailable() bool  { return s.sound }
