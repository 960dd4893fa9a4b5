package usecase

import "errors"

// Sentinel errors the HTTP layer maps to client-facing statuses.
var (
	ErrInvalidParams = errors.New("invalid params")
	ErrNoHistory     = errors.New("no price history")
)
