package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/fancystore/storeadmin/pkg/errors"
	"github.com/fancystore/storeadmin/pkg/logger"
	"github.com/fancystore/storeadmin/pkg/validator"
)

// Response is the JSON envelope for every API reply: exactly one of Data and
// Error is set.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse is the error half of the envelope.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type sentinelMapping struct {
	target  error
	status  int
	code    string
	message string // empty means err.Error()
}

// sentinels maps bare sentinel errors that reach the handler without an
// AppError wrapper. Order matters: the first match wins.
var sentinels = []sentinelMapping{
	{apperrors.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "resource not found"},
	{apperrors.ErrAlreadyExists, http.StatusBadRequest, "DUPLICATE_NAME", "resource already exists"},
	{apperrors.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT", ""},
	{apperrors.ErrUnsupportedMediaType, http.StatusBadRequest, "UNSUPPORTED_MEDIA_TYPE", ""},
	{apperrors.ErrPayloadTooLarge, http.StatusBadRequest, "PAYLOAD_TOO_LARGE", ""},
	{apperrors.ErrServiceUnavail, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "image store is unavailable"},
}

// classify turns err into a status and client-facing body. Messages of
// unknown errors are never exposed.
func classify(err error) (int, ErrorResponse) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: valErr.Error(),
			Fields:  valErr.Fields(),
		}
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Status, ErrorResponse{Code: appErr.Code, Message: appErr.Message}
	}

	for _, m := range sentinels {
		if errors.Is(err, m.target) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			return m.status, ErrorResponse{Code: m.code, Message: msg}
		}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}
}

// WriteError writes the envelope for err. 5xx errors are logged with the
// request-scoped logger when one is in the context, otherwise with fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	status, body := classify(err)
	body.RequestID = logger.CorrelationIDFromContext(r.Context())

	if status >= http.StatusInternalServerError {
		l := logger.FromContext(r.Context())
		if l == slog.Default() && fallback != nil {
			l = fallback
		}
		l.LogAttrs(r.Context(), slog.LevelError, "request failed",
			slog.String("code", body.Code),
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{Error: &body})
}

// WriteValidationError writes a 400 for a request body that could not be
// decoded or failed validation.
func WriteValidationError(w http.ResponseWriter, r *http.Request, err error) {
	body := ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()}
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		body = ErrorResponse{Code: "VALIDATION_ERROR", Message: valErr.Error(), Fields: valErr.Fields()}
	}
	body.RequestID = logger.CorrelationIDFromContext(r.Context())
	WriteJSON(w, http.StatusBadRequest, Response{Error: &body})
}

// ParseUUID parses a path parameter. On failure it writes a 400
// INVALID_PARAMETER reply and returns false.
func ParseUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, Response{Error: &ErrorResponse{
			Code:      "INVALID_PARAMETER",
			Message:   "invalid id: " + param,
			RequestID: logger.CorrelationIDFromContext(r.Context()),
		}})
		return uuid.Nil, false
	}
	return id, true
}
