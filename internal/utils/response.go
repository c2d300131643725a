package utils

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/brizzai/image-feed/internal/logger"
	"go.uber.org/zap"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 4em;">
<h2>{{.Title}}</h2><p>{{.Message}}</p>
</body></html>
`))

// WriteError writes a JSON error response in the OAuth error format
func WriteError(w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error":             code,
		"error_description": message,
	}); err != nil {
		logger.Error("Failed to encode error response", zap.Error(err))
	}
}

// WritePage writes a minimal HTML page for a browser tab
func WritePage(w http.ResponseWriter, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, struct{ Title, Message string }{title, message}); err != nil {
		logger.Error("Failed to render page", zap.Error(err))
	}
}
