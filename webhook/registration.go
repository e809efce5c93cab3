package webhook

import "time"

/* Registration is the manager's view of the provider-side webhook
 * Uses value semantics so readers always hold a private copy
 */
type Registration struct {
	// URL is the public base URL passed to Register
	URL string `json:"url"`
	// Endpoint is the URL the provider delivers to (URL + webhook path)
	Endpoint           string    `json:"endpoint"`
	RegisteredAt       time.Time `json:"registered_at,omitzero"`
	LastVerifiedAt     time.Time `json:"last_verified_at,omitzero"`
	Verified           bool      `json:"verified"`
	PendingUpdateCount int       `json:"pending_update_count"`
	LastError          string    `json:"last_error,omitempty"`
}

// Configured reports whether a webhook is registered with the provider
func (r Registration) Configured() bool {
	return r.Endpoint != ""
}
