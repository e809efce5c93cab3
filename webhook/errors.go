package webhook

import (
	"errors"
	"fmt"

	"github.com/marcelsud/telegram-ragbot/telegram"
)

var (
	// ErrInvalidURL is wrapped when the public URL cannot be used as a webhook target
	ErrInvalidURL = errors.New("invalid webhook url")
	// ErrBusy is wrapped when another lifecycle operation held the manager until the caller gave up
	ErrBusy = errors.New("another webhook operation is in progress")
)

// RegistrationError carries the provider's description of a failed lifecycle operation
type RegistrationError struct {
	Op          string
	Description string
	Err         error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("webhook %s: %s", e.Op, e.Description)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

func newRegistrationError(op string, err error) *RegistrationError {
	desc := err.Error()
	var apiErr *telegram.APIError
	if errors.As(err, &apiErr) {
		desc = apiErr.Description
	}
	return &RegistrationError{Op: op, Description: desc, Err: err}
}
