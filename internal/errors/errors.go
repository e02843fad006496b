package errors

import (
	"github.com/cockroachdb/errors"
)

// Marker errors used across the codebase. Every error returned by a
// repository or service is marked with exactly one of these so callers can
// branch on the class without string matching.
var (
	ErrValidation        = errors.New("validation_error")
	ErrNotFound          = errors.New("not_found")
	ErrAlreadyExists     = errors.New("already_exists")
	ErrPermissionDenied  = errors.New("permission_denied")
	ErrInvalidOperation  = errors.New("invalid_operation")
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrTransferFailed    = errors.New("transfer_failed")
	ErrDatabase          = errors.New("database_error")
	ErrSystem            = errors.New("system_error")
	ErrHTTPClient        = errors.New("http_client_error")
)

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

func IsInsufficientFunds(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}

func IsTransferFailed(err error) bool {
	return errors.Is(err, ErrTransferFailed)
}

func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}
