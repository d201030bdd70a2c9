package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized access")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict: resource already exists")
	ErrRateLimited       = errors.New("too many requests")
	ErrSessionExpired    = errors.New("session expired or invalid")
	ErrInvalidAmount     = errors.New("payment amount must be greater than 0")
	ErrAlreadyPaid       = errors.New("invoice is already fully paid")
	ErrOverpayment       = errors.New("payment amount exceeds remaining balance")
	ErrInvalidState      = errors.New("only pending payments can be updated")
	ErrInvalidTransition = errors.New("invalid invoice status transition")
)

// GatewayError wraps a failure talking to the M-Pesa API (network error,
// timeout, or a non-2xx response). Callers treat any GatewayError as "the
// payment request never reached the provider".
type GatewayError struct {
	Op     string // e.g. "token", "stkpush"
	Status int    // HTTP status, 0 for transport errors
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("mpesa %s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("mpesa %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// IsGatewayError reports whether err is (or wraps) a GatewayError.
func IsGatewayError(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
