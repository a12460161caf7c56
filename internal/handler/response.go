package handler

// Response helpers for the few JSON endpoints (health check, scripted
// uploads). Every JSON error has the same shape:
//
//	{"error": "not_found", "message": "project not found with id abc123"}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/portfolio-cms/internal/apperror"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON sets headers and status before the body; anything set after the
// first Write is ignored by net/http.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps a domain error to the HTTP status the browser sees. HTML
// pages use it too, so a failed load still renders with an honest code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, apperror.ErrNotConfirmed):
		return http.StatusBadRequest, "not_confirmed"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrUpstream):
		return http.StatusBadGateway, "upstream_error"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeError never exposes the text of an error that is not an AppError;
// those may carry internal details.
func writeError(w http.ResponseWriter, err error) {
	status, kind := statusFor(err)

	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		writeJSON(w, status, ErrorResponse{Error: kind, Message: appErr.Message})
		return
	}
	writeJSON(w, status, ErrorResponse{Error: kind, Message: "An internal error occurred"})
}
