package update

import "fmt"

/* Kind tells which field of the update carries the payload
 * Only one of them is present on a given update
 */
type Kind int

const (
	KindMessage Kind = iota + 1
	KindEditedMessage
	KindChannelPost
	KindCallbackQuery
	KindUnknown
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindEditedMessage:
		return "edited_message"
	case KindChannelPost:
		return "channel_post"
	case KindCallbackQuery:
		return "callback_query"
	case KindUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Validate checks if the kind is valid
func (k Kind) Validate() error {
	if k < KindMessage || k > KindUnknown {
		return fmt.Errorf("invalid update kind: %d", k)
	}
	return nil
}
