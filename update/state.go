package update

import "fmt"

/* State represents how far an inbound update got
 * Follows the lifecycle: Received -> Validated -> Routed -> Handled/Rejected
 */
type State int

const (
	Received State = iota + 1
	Validated
	Routed
	Handled
	Rejected
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case Received:
		return "received"
	case Validated:
		return "validated"
	case Routed:
		return "routed"
	case Handled:
		return "handled"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Validate checks if the state is valid
func (s State) Validate() error {
	if s < Received || s > Rejected {
		return fmt.Errorf("invalid state: %d", s)
	}
	return nil
}

// IsFinal returns true if the state is a terminal state
func (s State) IsFinal() bool {
	return s == Handled || s == Rejected
}
