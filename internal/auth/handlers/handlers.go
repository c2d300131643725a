package handlers

import (
	"net/http"
	"net/url"

	"github.com/brizzai/image-feed/internal/auth/constants"
	"github.com/brizzai/image-feed/internal/logger"
	"github.com/brizzai/image-feed/internal/utils"
	"go.uber.org/zap"
)

// CodeExtractor pulls the authorization code out of a redirect URL
type CodeExtractor func(u *url.URL) (string, bool)

// Handler receives the browser redirect at the end of the authorization flow
type Handler struct {
	extract CodeExtractor
	codes   chan string // holds at most one code not yet picked up
}

// NewHandler creates a new Handler instance
func NewHandler(extract CodeExtractor) *Handler {
	return &Handler{
		extract: extract,
		codes:   make(chan string, 1),
	}
}

// Codes delivers authorization codes in the order they arrive
func (h *Handler) Codes() <-chan string {
	return h.codes
}

// HandleAuthCallback handles the OAuth redirect
func (h *Handler) HandleAuthCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	code, ok := h.extract(r.URL)
	if !ok {
		if r.URL.Path == constants.NativeRedirectPath {
			if reason := r.URL.Query().Get("error"); reason != "" {
				logger.Warn("Authorization denied", zap.String("error", reason))
				utils.WriteError(w, reason, r.URL.Query().Get("error_description"), http.StatusBadRequest)
				return
			}
		}
		http.NotFound(w, r)
		return
	}

	select {
	case h.codes <- code:
		utils.WritePage(w, "Authorization received", "You may close this window and return to the terminal.")
	default:
		logger.Warn("Dropping authorization code, another one is still pending")
		utils.WriteError(w, "busy", "Another sign-in is still in progress, try again in a moment", http.StatusConflict)
	}
}
