package catalog

import "errors"

var (
	// ErrNotFound is returned when a title doesn't exist in the catalog.
	ErrNotFound = errors.New("title not found")
	// ErrUnauthorized is returned when the API rejects the bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnexpectedStatus wraps any other non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrDecode is returned when a response body cannot be decoded.
	ErrDecode = errors.New("decode response")
)
