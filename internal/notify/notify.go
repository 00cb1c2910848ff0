package notify

// NotificationType represents the type of notification event
type NotificationType string

const (
	// TypeSuccess indicates a successful generation
	TypeSuccess NotificationType = "success"
	// TypeFailure indicates a failed generation
	TypeFailure NotificationType = "failure"
)

// OutputType represents the notification output type
type OutputType string

const (
	// OutputSound sends only an audible notification
	OutputSound OutputType = "sound"
	// OutputVisual sends only a visual notification
	OutputVisual OutputType = "visual"
	// OutputBoth sends both sound and visual notifications
	OutputBoth OutputType = "both"
)

// ValidOutputType checks if the given string is a valid output type
func ValidOutputType(s string) bool {
	switch OutputType(s) {
	case OutputSound, OutputVisual, OutputBoth:
		return true
	default:
		return false
	}
}

// Config holds user preferences for notification behavior.
type Config struct {
	// Enabled is the master switch for all notifications (default: false, opt-in)
	Enabled bool `koanf:"enabled"`

	// Type specifies the notification output type: sound, visual, or both (default: both)
	Type OutputType `koanf:"type" validate:"omitempty,oneof=sound visual both"`

	// SoundFile is an optional custom sound file path
	SoundFile string `koanf:"sound_file"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Enabled:   false,
		Type:      OutputBoth,
		SoundFile: "",
	}
}

// Notification represents a single notification event to dispatch
type Notification struct {
	// Title is the notification title (e.g., "automaker")
	Title string

	// Message is the notification body text
	Message string

	// NotificationType indicates the event type: success or failure
	NotificationType NotificationType
}
