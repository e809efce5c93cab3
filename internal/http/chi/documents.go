package chi

import (
	"errors"
	"net/http"

	"github.com/go-chi/httplog"
	"github.com/marcelsud/telegram-ragbot/rag"
)

type reloadResponse struct {
	Status string `json:"status"`
	Chunks int    `json:"chunks"`
}

// postDocumentsReload handles POST /documents/reload.
// An empty folder is not an error; the bot then answers without documents.
func postDocumentsReload(docs DocumentLoader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := httplog.LogEntry(r.Context())

		n, err := docs.Load(r.Context())
		switch {
		case errors.Is(err, rag.ErrEmptyCorpus):
			log.Warn().Msg("documents folder is empty")
			writeJSON(w, http.StatusOK, reloadResponse{Status: "empty", Chunks: 0})
		case err != nil:
			log.Error().Err(err).Msg("reloading documents")
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			log.Info().Int("chunks", n).Msg("documents reloaded")
			writeJSON(w, http.StatusOK, reloadResponse{Status: "ok", Chunks: n})
		}
	})
}
