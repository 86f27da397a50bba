package platform

import "time"

// AppName identifies the application to the notification service.
const AppName = "maskproof"

// DefaultTimeout is how long a routine notification stays visible.
const DefaultTimeout = 5 * time.Second

// Urgency follows the freedesktop urgency levels.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath points to a PNG shown with the notification where supported.
	IconPath string
	// Subtitle names the layer the notification is about.
	Subtitle string
	Urgency  Urgency
	// Timeout overrides DefaultTimeout. Critical notifications stay until
	// dismissed unless Timeout is set.
	Timeout time.Duration
}

func (o Options) timeout() time.Duration {
	switch {
	case o.Timeout > 0:
		return o.Timeout
	case o.Urgency == UrgencyCritical:
		return 0
	default:
		return DefaultTimeout
	}
}

func (o Options) category() string {
	if o.Urgency == UrgencyCritical {
		return "transfer.error"
	}
	return "transfer.complete"
}

// body prefixes the subtitle on platforms without a subtitle field.
func (o Options) body(text string) string {
	if o.Subtitle == "" {
		return text
	}
	return o.Subtitle + "\n" + text
}
