package market

import "errors"

var (
	// ErrReverted is returned when a mined transaction has a failed status.
	ErrReverted = errors.New("transaction reverted")

	// ErrMintEventMissing is returned when a mint receipt carries no logs.
	ErrMintEventMissing = errors.New("mint event missing")

	// ErrMintEventMalformed is returned when the first mint log does not
	// decode to an event with an integer third argument.
	ErrMintEventMalformed = errors.New("mint event malformed")
)
