package server

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/charmbracelet/log"
	tgmodels "github.com/go-telegram/bot/models"
)

const maxUpdateBody = 1 << 20

// WebhookHandler receives Telegram updates on the secret bot-token path.
type WebhookHandler struct {
	path    string
	updates UpdateHandler
	logger  *log.Logger
}

// NewWebhookHandler creates a [WebhookHandler] for path, normally "/" followed by the bot token.
func NewWebhookHandler(path string, updates UpdateHandler, logger *log.Logger) *WebhookHandler {
	return &WebhookHandler{path: path, updates: updates, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *WebhookHandler) Routes() []string {
	return []string{"POST " + h.path}
}

// ServeHTTP answers "ok" to JSON updates and "!" to anything else.
//
// Malformed updates are logged and acknowledged so Telegram does not redeliver them.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		writeText(w, http.StatusOK, "!")
		return
	}

	var update tgmodels.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBody)).Decode(&update); err != nil {
		h.logger.Warn("malformed telegram update", "err", err)
		writeText(w, http.StatusOK, "ok")
		return
	}

	h.updates.HandleUpdate(r.Context(), &update)
	writeText(w, http.StatusOK, "ok")
}
