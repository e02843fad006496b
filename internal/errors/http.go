package errors

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// ErrorResponse is the JSON body returned for any failed API call.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail describes a single error in an ErrorResponse.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// HTTPStatusFromErr maps an error class marker to an HTTP status code.
func HTTPStatusFromErr(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidOperation):
		return http.StatusBadRequest
	case errors.Is(err, ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrTransferFailed):
		return http.StatusBadGateway
	case errors.Is(err, ErrHTTPClient):
		return http.StatusBadGateway
	case errors.Is(err, ErrDatabase), errors.Is(err, ErrSystem):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the stable machine-readable code for an error class.
func Code(err error) string {
	for _, marker := range []error{
		ErrValidation,
		ErrNotFound,
		ErrAlreadyExists,
		ErrPermissionDenied,
		ErrInvalidOperation,
		ErrInsufficientFunds,
		ErrTransferFailed,
		ErrDatabase,
		ErrSystem,
		ErrHTTPClient,
	} {
		if errors.Is(err, marker) {
			return marker.Error()
		}
	}
	return "internal_error"
}

// NewErrorResponse builds the API error body for an error.
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:    Code(err),
			Message: Hint(err),
			Details: Details(err),
		},
	}
}
