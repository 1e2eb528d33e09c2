package booking

import (
	"errors"
	"fmt"
)

// ErrNotCancellable is returned when a booking is already closed.
var ErrNotCancellable = errors.New("booking cannot be cancelled")

// ValidationError reports a bad request field other than the date and time.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(msg string) error {
	return &ValidationError{
		Code:    "validationError",
		Message: msg,
	}
}
