package model

import "errors"

var (
	// ErrNotFound is fatal to the view that requested the row.
	ErrNotFound = errors.New("not found")
	// ErrTransientIO wraps store and network failures the user may retry.
	ErrTransientIO = errors.New("store call failed")
	// ErrValidationSkip marks an action ignored for a missing precondition.
	ErrValidationSkip = errors.New("precondition not met, action skipped")
	// ErrPartialEnrichment marks a placeholder substituted during projection.
	ErrPartialEnrichment = errors.New("conversation enrichment degraded")

	ErrAlreadyAssigned    = errors.New("conversation is already assigned")
	ErrForbidden          = errors.New("action not allowed for role")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNoSession          = errors.New("no active session")
)
