package domain

import "errors"

// Sentinel errors shared by the application services. Services wrap these with
// context via fmt.Errorf("%w: ..."); handlers map them to HTTP status codes
// with errors.Is.
var (
	// ErrNotFound — referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState — the entity is not in a state that permits the operation.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnauthorized — acting user lacks the required role (e.g. not the request owner).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict — concurrent modification detected (version mismatch). Safe to retry.
	ErrConflict = errors.New("conflict")
	// ErrValidation — malformed input. Not retryable without correction.
	ErrValidation = errors.New("validation error")
)
