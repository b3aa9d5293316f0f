package httputil

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/snapvault/gallery-server-go/internal/errors"
)

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// ErrorBody is the inner object of the uniform error envelope.
type ErrorBody struct {
	Code      apperrors.ErrorCode `json:"code"`
	Message   string              `json:"message"`
	RequestID string              `json:"request_id"`
	Details   any                 `json:"details"`
}

// ErrorResponse is the uniform error envelope returned by every failing endpoint.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// WriteError writes an AppError as an HTTP response with the status derived from its code.
// The request id comes from the chi RequestID middleware so clients can correlate with logs.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal("An unexpected error occurred")
	}

	details := appErr.Details
	if details == nil {
		details = map[string]any{}
	}

	WriteJSON(w, StatusFromCode(appErr.Code), ErrorResponse{
		Error: ErrorBody{
			Code:      appErr.Code,
			Message:   appErr.Message,
			RequestID: chimiddleware.GetReqID(r.Context()),
			Details:   details,
		},
	})
}

// StatusFromCode maps ErrorCode to HTTP status code
func StatusFromCode(code apperrors.ErrorCode) int {
	switch code {
	// 400 Bad Request
	case apperrors.ErrCodeValidation,
		apperrors.ErrCodeInvalidInput,
		apperrors.ErrCodeMissingRequired,
		apperrors.ErrCodeEventNotJoinable:
		return http.StatusBadRequest

	// 401 Unauthorized
	case apperrors.ErrCodeUnauthorized,
		apperrors.ErrCodeInvalidPin:
		return http.StatusUnauthorized

	// 403 Forbidden
	case apperrors.ErrCodeCSRFCheckFailed:
		return http.StatusForbidden

	// 404 Not Found
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound

	// 409 Conflict
	case apperrors.ErrCodeConflict:
		return http.StatusConflict

	// 429 Too Many Requests
	case apperrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests

	// 500 Internal Server Error
	case apperrors.ErrCodeStorageSignFailed,
		apperrors.ErrCodeStorageCheckFailed,
		apperrors.ErrCodeStorageDeleteFailed,
		apperrors.ErrCodeDBWriteFailed,
		apperrors.ErrCodeInternal,
		apperrors.ErrCodeDatabase:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}
