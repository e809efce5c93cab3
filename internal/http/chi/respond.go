package chi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/marcelsud/telegram-ragbot/webhook/secrettoken"
)

// errorResponse is the body of every non-2xx response
type errorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, StatusCode: status})
}

// requireAdmin guards operator routes with a bearer token. An empty token leaves them open.
func requireAdmin(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || got == "" || !secrettoken.Verify(token, got) {
				writeError(w, http.StatusUnauthorized, "admin token required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
