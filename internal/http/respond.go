package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/services"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, log.ErrorTypeValidation
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized, log.ErrorTypeAuth
	case core.IsValidation(err):
		return http.StatusUnprocessableEntity, log.ErrorTypeValidation
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, log.ErrorTypeNotFound
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict, log.ErrorTypeConflict
	case errors.Is(err, core.ErrInsufficientBalance),
		errors.Is(err, core.ErrInsufficientSavings),
		errors.Is(err, core.ErrGoalReached),
		errors.Is(err, core.ErrAlreadyPaid),
		errors.Is(err, core.ErrDefaultCategory),
		errors.Is(err, services.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, log.ErrorTypeBusiness
	}
	return http.StatusInternalServerError, log.ErrorTypeInternal
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, errType := statusFor(err)
	body := errorBody{Error: err.Error()}
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}

	logger := log.FromContext(r.Context())
	fields := log.NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, "", "").
		WithError(err).
		WithErrorType(errType)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", fields.ToSlice()...)
		body.Error = "internal error"
	} else {
		logger.DebugContext(r.Context(), "Request rejected", fields.ToSlice()...)
	}
	writeJSON(w, status, body)
}
