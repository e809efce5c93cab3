package chi

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/httplog"
	"github.com/marcelsud/telegram-ragbot/health"
	"github.com/marcelsud/telegram-ragbot/update"
	"github.com/marcelsud/telegram-ragbot/webhook/secrettoken"
)

const (
	maxUpdateBytes    = 1 << 20
	retryAfterSeconds = "5"
)

type rootResponse struct {
	Name      string   `json:"name"`
	Status    string   `json:"status"`
	Mode      string   `json:"mode"`
	Endpoints []string `json:"endpoints"`
}

// postUpdate handles POST {WEBHOOK_PATH}.
// Anything that parses is acknowledged with 200 so the provider does not redeliver it.
// An update that could not be queued gets 503, which makes the provider retry it.
func postUpdate(updates UpdateHandler, secret string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := httplog.LogEntry(r.Context())

		if !secrettoken.Verify(secret, r.Header.Get(secrettoken.HeaderName)) {
			writeError(w, http.StatusUnauthorized, "invalid secret token")
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxUpdateBytes+1))
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		defer r.Body.Close()
		if len(body) > maxUpdateBytes {
			writeError(w, http.StatusRequestEntityTooLarge, "update too large")
			return
		}

		res, err := updates.Handle(r.Context(), body)
		if err != nil {
			var verr *update.ValidationError
			if errors.As(err, &verr) {
				writeError(w, http.StatusBadRequest, verr.Error())
				return
			}
			if errors.Is(err, update.ErrQueueFull) || errors.Is(err, update.ErrStopped) {
				w.Header().Set("Retry-After", retryAfterSeconds)
				writeError(w, http.StatusServiceUnavailable, err.Error())
				return
			}
			log.Error().Err(err).Msg("handling update")
		} else {
			log.Debug().
				Int64("update_id", res.UpdateID).
				Str("state", res.State.String()).
				Bool("final", res.State.IsFinal()).
				Bool("queued", res.Queued).
				Msg("update handled")
		}

		writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
	})
}

// getHealth handles GET /health. It always answers 200; readiness is in the body.
func getHealth(reporter HealthReporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reporter == nil {
			writeJSON(w, http.StatusOK, health.Status{Status: health.StatusDegraded, Error: "health reporter unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, reporter.Report(r.Context()))
	})
}

// getRoot handles GET /
func getRoot(cfg Config, deps Dependencies) http.Handler {
	endpoints := []string{"GET /health"}
	if deps.Metrics != nil {
		endpoints = append(endpoints, "GET /metrics")
	}
	endpoints = append(endpoints, "POST "+cfg.WebhookPath)
	if cfg.operatorRoutes() {
		endpoints = append(endpoints, "POST /webhook/set", "GET /webhook", "DELETE /webhook")
		if deps.Collector != nil {
			endpoints = append(endpoints, "GET /stats")
		}
		if deps.Documents != nil {
			endpoints = append(endpoints, "POST /documents/reload")
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, rootResponse{
			Name:      cfg.BotName,
			Status:    "running",
			Mode:      cfg.Mode,
			Endpoints: endpoints,
		})
	})
}
