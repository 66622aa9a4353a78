package httputil

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/davimurta/aurora-pairing-server/internal/errors"
)

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// ErrorResponse is the standard failure envelope: success is always false,
// message is human-readable, code identifies the failure class.
type ErrorResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Code    apperrors.ErrorCode `json:"code"`
	Details any                 `json:"details,omitempty"`
}

// WriteError writes an AppError as an HTTP response with appropriate status code.
// When verbose is false (production), error details are stripped from the payload.
func WriteError(w http.ResponseWriter, err error, verbose bool) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal("An unexpected error occurred")
	}

	response := ErrorResponse{
		Success: false,
		Message: appErr.Message,
		Code:    appErr.Code,
	}
	if verbose {
		response.Details = appErr.Details
	}

	WriteJSON(w, StatusFromCode(appErr.Code), response)
}

// StatusFromCode maps ErrorCode to HTTP status code.
//
// Activation failures (unknown, expired, used code) are client input problems
// and map to 400; NOT_FOUND is reserved for resource lookups and maps to 404.
func StatusFromCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeValidation,
		apperrors.ErrCodeMissingRequired,
		apperrors.ErrCodeConnectionCodeNotFound,
		apperrors.ErrCodeConnectionExpired,
		apperrors.ErrCodeConnectionAlreadyUsed:
		return http.StatusBadRequest

	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound

	case apperrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests

	case apperrors.ErrCodeInternal,
		apperrors.ErrCodeDatabase:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}
