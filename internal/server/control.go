package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/shared"
)

const maxControlBody = 64 << 10

// ControlHandler serves the JSON control API used by the Mini App and the terminal remote.
type ControlHandler struct {
	dispatcher Dispatcher
	logger     *log.Logger
}

// NewControlHandler creates a [ControlHandler].
func NewControlHandler(dispatcher Dispatcher, logger *log.Logger) *ControlHandler {
	return &ControlHandler{dispatcher: dispatcher, logger: logger}
}

// Routes returns the generic action route and the per-action aliases.
func (h *ControlHandler) Routes() []string {
	return []string{
		"POST /api/control/{action}",
		"POST /api/status",
		"POST /api/search",
		"POST /api/like",
		"POST /api/playlists",
		"POST /api/playlist",
	}
}

// ServeHTTP decodes the request body, dispatches the action named by the path and writes the envelope.
func (h *ControlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := r.PathValue("action")
	if action == "" {
		action = strings.TrimPrefix(r.URL.Path, "/api/")
	}

	var req models.ControlRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxControlBody)).Decode(&req); err != nil {
		if !errors.Is(err, shared.ErrInvalidInput) {
			err = fmt.Errorf("%w: invalid JSON body", shared.ErrInvalidInput)
		}
		writeError(w, err)
		return
	}
	req.Action = action

	result, err := h.dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		h.logger.Debug("control request rejected", "user", req.UserID, "action", action, "err", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.Envelope{Success: true, Message: result.Message, Data: result.Data})
}
