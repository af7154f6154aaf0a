package server

import (
	"net/http"

	"github.com/charmbracelet/log"
)

const (
	msgAuthCancelled = "Authorization cancelled."
	msgAuthError     = "Authorization error. Please try again."
)

// CallbackHandler completes the OAuth authorization code flow for the user named by the state parameter.
//
// Every callback is handled independently; the state carries the user, not a per-flow secret.
type CallbackHandler struct {
	auth     Authorizer
	notifier Notifier
	logger   *log.Logger
}

// NewCallbackHandler creates a [CallbackHandler].
func NewCallbackHandler(auth Authorizer, notifier Notifier, logger *log.Logger) *CallbackHandler {
	return &CallbackHandler{auth: auth, notifier: notifier, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"GET /callback"}
}

// ServeHTTP handles the OAuth callback request.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	userID := query.Get("state")

	if code == "" {
		h.logger.Info("authorization cancelled", "user", userID, "error", query.Get("error"))
		if h.notifier != nil {
			h.notifier.AuthorizationCancelled(r.Context(), userID)
		}
		writeText(w, http.StatusOK, msgAuthCancelled)
		return
	}

	if _, err := h.auth.CompleteAuthorization(r.Context(), code, userID); err != nil {
		h.logger.Error("token exchange failed", "user", userID, "err", err)
		writeText(w, http.StatusBadRequest, msgAuthError)
		return
	}

	if h.notifier != nil {
		h.notifier.AuthorizationSucceeded(r.Context(), userID)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(successPage))
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>Authorization Complete</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Authorization complete</h1>
        <p>Return to Telegram.</p>
    </div>
</body>
</html>
`
