package napkin

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrMissingAPIKey indicates no API key was configured.
	ErrMissingAPIKey = errors.New("napkin: API key is required")

	// ErrEmptyRequestID indicates a status or download call was made
	// without a request ID.
	ErrEmptyRequestID = errors.New("napkin: request ID is required")
)

// ValidationError reports a request field that failed boundary validation.
// No network call is made for an invalid request.
type ValidationError struct {
	// Field is the request field that failed validation.
	Field string

	// Message explains the failure.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("napkin: invalid request field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("napkin: invalid request: %s", e.Message)
}
