package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/asc-academy/evaluation-portal/pkg/logger"
)

// Envelope is the uniform response body: success plus one payload key on the
// happy path, success=false plus message on every failure. Failures never
// carry data and never have an empty body.
type Envelope map[string]interface{}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteSuccess writes the success envelope with the given payload keys.
func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, payload Envelope) {
	body := Envelope{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	h.WriteJSON(w, status, body)
}

// WriteError writes the failure envelope
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	h.WriteJSON(w, status, Envelope{
		"success": false,
		"message": message,
	})
}

// WriteAppError maps a service failure to its status and message. Anything
// that is not an AppError is treated as unexpected: generic message out,
// full detail logged here only.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			h.Logger.Error("internal error", "error", appErr.Error())
			h.WriteError(w, appErr.StatusCode, "Server Error")
			return
		}
		h.WriteError(w, appErr.StatusCode, appErr.Message)
		return
	}
	h.Logger.Error("unexpected error", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "Server Error")
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}
