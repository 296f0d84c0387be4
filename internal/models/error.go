package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Session and table state errors
	ErrSessionNotFound      = errors.New("session not found")
	ErrInvalidTab           = errors.New("operation not available on the active tab")
	ErrConfirmationNotFound = errors.New("no pending confirmation with that id")
	ErrInvalidTitle         = errors.New("title is required and must not exceed the maximum length")
)
