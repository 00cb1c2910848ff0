package notify

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
)

// Sender defines the interface for platform-specific notification senders
type Sender interface {
	// SendVisual sends a visual notification to the OS notification system
	SendVisual(n Notification) error

	// SendSound plays an audio notification
	SendSound(soundFile string) error

	// VisualAvailable returns true if visual notifications are supported
	VisualAvailable() bool

	// SoundAvailable returns true if sound notifications are supported
	SoundAvailable() bool
}

// NewSender creates a platform-specific notification sender based on the
// current OS. For unsupported platforms, it returns a no-op sender.
func NewSender() Sender {
	switch runtime.GOOS {
	case "darwin":
		return newDarwinSender()
	case "linux":
		return newLinuxSender()
	case "windows":
		return newWindowsSender()
	default:
		return &noopSender{}
	}
}

// toolAvailable checks if a command-line tool is available in PATH
func toolAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// noopSender is a sender that does nothing (for unsupported platforms)
type noopSender struct{}

func (s *noopSender) SendVisual(_ Notification) error { return nil }
func (s *noopSender) SendSound(_ string) error        { return nil }
func (s *noopSender) VisualAvailable() bool           { return false }
func (s *noopSender) SoundAvailable() bool            { return false }

// supportedAudioExtensions contains file extensions supported for custom sounds
var supportedAudioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".aiff": true,
	".aif":  true,
	".ogg":  true,
	".flac": true,
	".m4a":  true,
}

// ValidateSoundFile checks if the sound file exists and has a supported
// format. Invalid files log a warning and return empty string so senders
// fall back to their platform default.
func ValidateSoundFile(soundFile string) string {
	if soundFile == "" {
		return ""
	}

	info, err := os.Stat(soundFile)
	if err != nil {
		log.Warn().Str("component", "notify").Str("file", soundFile).Err(err).Msg("custom sound file unusable, falling back to default")
		return ""
	}
	if info.IsDir() {
		log.Warn().Str("component", "notify").Str("file", soundFile).Msg("sound path is a directory, falling back to default")
		return ""
	}

	ext := strings.ToLower(filepath.Ext(soundFile))
	if !supportedAudioExtensions[ext] {
		log.Warn().Str("component", "notify").Str("file", soundFile).Str("ext", ext).Msg("unsupported audio format, falling back to default")
		return ""
	}
	return soundFile
}
