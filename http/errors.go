// Package http provides the shared HTTP client used by API integrations.
package http

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for integration clients.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates invalid or missing authentication.
	ErrUnauthorized = errors.New("authentication failed")

	// ErrForbidden indicates the caller lacks permission for the operation.
	ErrForbidden = errors.New("permission denied")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrBadRequest indicates the request was malformed.
	ErrBadRequest = errors.New("bad request")

	// ErrServerError indicates a server-side error occurred.
	ErrServerError = errors.New("server error")
)

// APIError represents a non-2xx response from an external API.
// The raw response body is retained for diagnostics.
type APIError struct {
	// Service is the name of the integration (e.g., "napkin").
	Service string

	// StatusCode is the HTTP status code returned.
	StatusCode int

	// Endpoint is the API endpoint that was called.
	Endpoint string

	// Message is the error message parsed from the response, if any.
	Message string

	// Body is the raw response body.
	Body string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Body
	}
	return fmt.Sprintf("%s API error (%d) at %s: %s", e.Service, e.StatusCode, e.Endpoint, msg)
}

// Unwrap returns the underlying sentinel error based on status code.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 400:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 429:
		return ErrRateLimited
	default:
		if e.StatusCode >= 500 {
			return ErrServerError
		}
		return nil
	}
}

// ResponseError represents a 2xx response whose body did not match the
// expected shape. It carries no status code; the raw body is retained.
type ResponseError struct {
	// Service is the integration that produced the response.
	Service string

	// Endpoint is the API endpoint that was called.
	Endpoint string

	// Body is the raw response body that failed to parse.
	Body string

	// Err is the underlying decode error.
	Err error
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s returned an unexpected response at %s: %v", e.Service, e.Endpoint, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *ResponseError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the error is transient and eligible for retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServerError) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}

	return false
}
