package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/httplog"
	"github.com/marcelsud/telegram-ragbot/metrics"
	"github.com/marcelsud/telegram-ragbot/webhook"
)

/* HTTP layer DTOs for the operator API
 * Registration is returned as is; it carries no secrets
 */

// setWebhookRequest is the optional JSON body of POST /webhook/set
type setWebhookRequest struct {
	URL        string `json:"url"`
	WebhookURL string `json:"webhook_url"`
}

type webhookResponse struct {
	Status  string               `json:"status"`
	Webhook webhook.Registration `json:"webhook"`
}

// postWebhookSet handles POST /webhook/set.
// The URL comes from the url (or webhook_url) query parameter, then the JSON body,
// then the configured default.
func postWebhookSet(lifecycle webhook.Lifecycle, defaultURL string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("url")
		if target == "" {
			target = r.URL.Query().Get("webhook_url")
		}
		if target == "" {
			var req setWebhookRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			target = req.URL
			if target == "" {
				target = req.WebhookURL
			}
		}
		if target == "" {
			target = defaultURL
		}
		if target == "" {
			writeError(w, http.StatusBadRequest, "url is required")
			return
		}

		reg, err := lifecycle.Register(r.Context(), target)
		if err != nil {
			writeRegistrationError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, webhookResponse{Status: "ok", Webhook: reg})
	})
}

// getWebhook handles GET /webhook
func getWebhook(lifecycle webhook.Lifecycle) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reg, err := lifecycle.Verify(r.Context())
		if err != nil {
			writeRegistrationError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, webhookResponse{Status: "ok", Webhook: reg})
	})
}

// deleteWebhook handles DELETE /webhook
func deleteWebhook(lifecycle webhook.Lifecycle) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := lifecycle.Clear(r.Context()); err != nil {
			writeRegistrationError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, webhookResponse{Status: "ok", Webhook: lifecycle.Snapshot()})
	})
}

// getStats handles GET /stats
func getStats(collector metrics.Collector) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m, err := collector.Collect(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, m)
	})
}

func writeRegistrationError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, webhook.ErrInvalidURL) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if errors.Is(err, webhook.ErrBusy) {
		writeError(w, http.StatusConflict, "another webhook operation is in progress")
		return
	}

	log := httplog.LogEntry(r.Context())
	log.Error().Err(err).Msg("webhook operation failed")

	var rerr *webhook.RegistrationError
	if errors.As(err, &rerr) {
		writeError(w, http.StatusBadGateway, rerr.Description)
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
