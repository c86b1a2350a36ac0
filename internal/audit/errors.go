package audit

import "errors"

var (
	ErrActionEmpty       = errors.New("audit: action cannot be empty")
	ErrActorUserIDEmpty  = errors.New("audit: actor userId is required")
	ErrActorEmailEmpty   = errors.New("audit: actor email is required")
	ErrResourceTypeEmpty = errors.New("audit: resource type is required")
	ErrResourceIDEmpty   = errors.New("audit: resource id is required")
	ErrInvalidOutcome    = errors.New("audit: invalid outcome")
	ErrInvalidSeverity   = errors.New("audit: invalid severity")
	ErrSecretMissing     = errors.New("audit: hash secret is not configured")
	ErrHashing           = errors.New("audit: hash computation failed")
	ErrEntryNotFound     = errors.New("audit: entry not found")
	ErrResetNotPermitted = errors.New("audit: log reset is not permitted in production")
)
