package types

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrUnauthenticated   = errors.New("user not authenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrTripUnavailable   = errors.New("trip is not open for booking")
	ErrBookingClosed     = errors.New("booking cutoff has passed")
	ErrPaymentIncomplete = errors.New("payment has not completed")
)

// ValidationError carries a message that is safe to show to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}
