// Package errors defines error types for the value distribution calculator.
package errors

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidParameter indicates an invalid parameter was provided.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUnknownAction indicates the action type is not one the form understands.
	ErrUnknownAction = errors.New("unknown action")
	// ErrInvalidForm indicates a submitted form could not be decoded.
	ErrInvalidForm = errors.New("invalid form submission")
	// ErrNotFound indicates no route or asset matches the request.
	ErrNotFound = errors.New("not found")
)

// IsInvalidInput returns true if the error was caused by client input. Marks
// attached with errors.Mark are honored as well as wrapped causes.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidParameter) ||
		errors.Is(err, ErrUnknownAction) ||
		errors.Is(err, ErrInvalidForm)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
