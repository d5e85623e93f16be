package storage

import "errors"

// Journal errors. Activities are written once and never updated.
var (
	// ErrNotFound is returned when no activity has the requested ID.
	ErrNotFound = errors.New("activity not found")

	// ErrDuplicateKey is returned when an activity ID is already journaled.
	ErrDuplicateKey = errors.New("activity already journaled")

	// ErrInvalidInput is returned for a nil activity, an empty ID,
	// an unknown state or a non-positive limit.
	ErrInvalidInput = errors.New("invalid activity input")
)
