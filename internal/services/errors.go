package services

import "errors"

var (
	ErrCapacityExceeded = errors.New("inventory is full")
	ErrDuplicateID      = errors.New("a product with this ID already exists")
	ErrNotFound         = errors.New("product not found")
	ErrInvalidProduct   = errors.New("invalid product")
	// ErrPersistence marks a write that failed after the in-memory state was
	// already changed. The change is kept.
	ErrPersistence = errors.New("failed to persist inventory")
	// ErrConfirmationRequired is returned by collaborators when an
	// irreversible operation was requested without confirmation.
	ErrConfirmationRequired = errors.New("confirmation required")
)
