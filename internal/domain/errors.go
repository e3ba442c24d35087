package domain

import "errors"

// Caller-facing error taxonomy. The HTTP layer maps these to status codes
// with errors.Is; lower layers wrap them with context.
var (
	// ErrUnauthenticated means the request carried no usable identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidToken means a bearer token was present but unverifiable or expired.
	ErrInvalidToken = errors.New("invalid token")
	// ErrNotOwner means the authenticated subject does not own the target resource.
	ErrNotOwner = errors.New("not the resource owner")
	// ErrNotFound means the target does not exist or is soft-deleted.
	ErrNotFound = errors.New("resource not found")
	// ErrConflict means a uniqueness or referential constraint was violated.
	ErrConflict = errors.New("conflicting record")
	// ErrInvalidInput means the request payload failed validation.
	ErrInvalidInput = errors.New("invalid input")
)
