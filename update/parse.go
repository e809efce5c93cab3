package update

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ValidationError means the payload is not a usable update. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid update: " + e.Reason
	}
	return fmt.Sprintf("invalid update: %s %s", e.Field, e.Reason)
}

// presence only records which required fields are present
type presence struct {
	UpdateID      *int64           `json:"update_id"`
	Message       *presenceMessage `json:"message"`
	EditedMessage *presenceMessage `json:"edited_message"`
	ChannelPost   *presenceMessage `json:"channel_post"`
}

type presenceMessage struct {
	Chat *struct {
		ID *int64 `json:"id"`
	} `json:"chat"`
}

// Parse validates a raw provider delivery
func Parse(raw []byte) (InboundUpdate, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return InboundUpdate{}, &ValidationError{Reason: "body must be a JSON object"}
	}

	var p presence
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return InboundUpdate{}, &ValidationError{Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}
	if p.UpdateID == nil {
		return InboundUpdate{}, &ValidationError{Field: "update_id", Reason: "is required"}
	}
	if *p.UpdateID < 0 {
		return InboundUpdate{}, &ValidationError{Field: "update_id", Reason: "must not be negative"}
	}
	for _, c := range []struct {
		field string
		msg   *presenceMessage
	}{
		{"message", p.Message},
		{"edited_message", p.EditedMessage},
		{"channel_post", p.ChannelPost},
	} {
		if c.msg != nil && (c.msg.Chat == nil || c.msg.Chat.ID == nil) {
			return InboundUpdate{}, &ValidationError{Field: c.field + ".chat.id", Reason: "is required"}
		}
	}

	var tu tgbotapi.Update
	if err := json.Unmarshal(trimmed, &tu); err != nil {
		return InboundUpdate{}, &ValidationError{Reason: fmt.Sprintf("malformed update: %v", err)}
	}

	u := InboundUpdate{
		UpdateID:   int64(tu.UpdateID),
		Kind:       KindUnknown,
		ReceivedAt: time.Now().UTC(),
	}

	var msg *tgbotapi.Message
	switch {
	case tu.Message != nil:
		u.Kind, msg = KindMessage, tu.Message
	case tu.EditedMessage != nil:
		u.Kind, msg = KindEditedMessage, tu.EditedMessage
	case tu.ChannelPost != nil:
		u.Kind, msg = KindChannelPost, tu.ChannelPost
	case tu.CallbackQuery != nil:
		u.Kind = KindCallbackQuery
		if tu.CallbackQuery.From != nil {
			u.SenderID = tu.CallbackQuery.From.ID
		}
		msg = tu.CallbackQuery.Message
	}

	if msg != nil {
		u.MessageID = int64(msg.MessageID)
		if msg.Chat != nil {
			u.ChatID = msg.Chat.ID
			u.ChatType = msg.Chat.Type
		}
		u.Text = msg.Text
		if msg.From != nil {
			u.SenderID = msg.From.ID
		}
	}
	return u, nil
}
