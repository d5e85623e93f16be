package domain

import "errors"

// Failure kinds surfaced by marketplace flows.
// Adapters wrap these so callers classify with errors.Is.
var (
	// ErrSessionRejected is returned when the user declines wallet approval
	// or no wallet is available.
	ErrSessionRejected = errors.New("session rejected")

	// ErrStoreUnavailable is returned when content cannot be stored.
	ErrStoreUnavailable = errors.New("content store unavailable")

	// ErrResolveFailed is returned when a locator cannot be resolved to a JSON document.
	ErrResolveFailed = errors.New("resolve failed")

	// ErrTransactionFailed is returned when a contract call reverts, times out,
	// or yields an unparseable confirmation.
	ErrTransactionFailed = errors.New("transaction failed")
)
