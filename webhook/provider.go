package webhook

import (
	"context"

	"github.com/marcelsud/telegram-ragbot/telegram"
)

// Registrar changes the provider-side registration
type Registrar interface {
	SetWebhook(ctx context.Context, params telegram.SetWebhookParams) error
	DeleteWebhook(ctx context.Context, dropPending bool) error
}

// Inspector reads the provider-side registration
type Inspector interface {
	GetWebhookInfo(ctx context.Context) (telegram.WebhookInfo, error)
}

// Provider is implemented by *telegram.Client
type Provider interface {
	Registrar
	Inspector
}
