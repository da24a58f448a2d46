package domain

import "errors"

var (
	// ErrNotFound is returned when a document or object does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when a request fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when a bearer token is missing or rejected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbiddenKey is returned for object keys outside the content prefix.
	ErrForbiddenKey = errors.New("key outside content prefix")
	// ErrTooLarge is returned when an upload exceeds the size limit.
	ErrTooLarge = errors.New("upload too large")
)
