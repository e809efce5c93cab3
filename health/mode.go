package health

import "fmt"

// Mode is how updates reach the bot
type Mode int

const (
	ModeWebhook Mode = iota + 1
	ModePolling
	ModeDemo
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeWebhook:
		return "webhook"
	case ModePolling:
		return "polling"
	case ModeDemo:
		return "demo"
	default:
		return "unknown"
	}
}

// Validate checks if the mode is valid
func (m Mode) Validate() error {
	if m < ModeWebhook || m > ModeDemo {
		return fmt.Errorf("invalid mode: %d", m)
	}
	return nil
}

// MarshalText encodes the mode by name
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
