package telegram

/* Provider-side views the webhook manager works with.
 * Inbound updates use tgbotapi.Update directly.
 */

// WebhookInfo is the provider's view of the current registration
type WebhookInfo struct {
	URL                  string
	HasCustomCertificate bool
	PendingUpdateCount   int
	LastErrorDate        int64
	LastErrorMessage     string
	MaxConnections       int
}

// SetWebhookParams are the arguments of setWebhook
type SetWebhookParams struct {
	URL                string
	SecretToken        string
	DropPendingUpdates bool
	AllowedUpdates     []string
}
