package util

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cashlytic-server/src/apperr"
	"cashlytic-server/src/logger"
)

const (
	MsgExtractionFailed = "Failed to scan receipt. Please try again or enter manually."
	MsgTooManyRequests  = "Too many requests. Please try again later."
	MsgInternal         = "internal error"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON writes data inside a success envelope.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	write(w, status, envelope{Success: true, Data: data})
}

// WriteMessage writes a failure envelope carrying msg.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	write(w, status, envelope{Success: false, Error: msg})
}

// WriteError maps err onto a status and a client-safe message and logs it
// with the request logger. Server-side failures never leak their detail.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := StatusFor(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		log.Info().Err(err).Int("status", status).Msg("request rejected")
	}
	WriteMessage(w, status, msg)
}

func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperr.ErrAccountNotFound):
		return http.StatusNotFound, apperr.ErrAccountNotFound.Error()
	case errors.Is(err, apperr.ErrTransactionNotFound):
		return http.StatusNotFound, apperr.ErrTransactionNotFound.Error()
	case errors.Is(err, apperr.ErrUserNotFound):
		return http.StatusNotFound, apperr.ErrUserNotFound.Error()
	case errors.Is(err, apperr.ErrBudgetNotFound):
		return http.StatusNotFound, apperr.ErrBudgetNotFound.Error()
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest, validationDetail(err)
	case errors.Is(err, apperr.ErrExtractionFormat):
		return http.StatusUnprocessableEntity, MsgExtractionFailed
	case errors.Is(err, apperr.ErrTooManyRequests):
		return http.StatusTooManyRequests, MsgTooManyRequests
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

// validationDetail drops any wrapping context in front of the validation
// sentinel so the client sees only the detail.
func validationDetail(err error) string {
	msg := err.Error()
	prefix := apperr.ErrValidation.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	if i := strings.Index(msg, apperr.ErrValidation.Error()); i >= 0 {
		return msg[i:]
	}
	return msg
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
