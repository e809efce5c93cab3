package update

import "time"

/* InboundUpdate is the validated form of one provider delivery
 * It lives only for the duration of a request and its reply job
 */
type InboundUpdate struct {
	UpdateID   int64
	Kind       Kind
	MessageID  int64
	SenderID   int64
	ChatID     int64
	ChatType   string
	Text       string
	Command    Command
	Args       string
	ReceivedAt time.Time
}

// IsGroup reports whether the update comes from a multi-user chat
func (u InboundUpdate) IsGroup() bool {
	return u.ChatType == "group" || u.ChatType == "supergroup"
}
