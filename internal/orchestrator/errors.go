package orchestrator

import (
	"errors"
	"fmt"

	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/listing"
)

// ErrEmptyAsset is returned when UploadAsset receives no bytes.
var ErrEmptyAsset = errors.New("empty asset")

// kinds is the failure taxonomy surfaced to callers.
var kinds = []error{
	domain.ErrSessionRejected,
	domain.ErrStoreUnavailable,
	domain.ErrResolveFailed,
	domain.ErrTransactionFailed,
}

// FlowError is the flow-level failure signal. errors.Is matches both the
// taxonomy Kind and the underlying cause. A rejected price has Kind
// listing.ErrInvalidAmount.
type FlowError struct {
	Kind  error  // one of the domain taxonomy sentinels
	State State  // state the flow was in when the step failed
	Step  string // failed step
	Err   error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s failed in state %s: %v", e.Step, e.State, e.Err)
}

func (e *FlowError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// newFlowError classifies err. Errors that carry no taxonomy sentinel are
// attributed to the step's collaborator.
func newFlowError(step string, state State, err error) *FlowError {
	kind, ok := kindOf(err)
	if !ok {
		switch step {
		case stepParsePrice:
			kind = listing.ErrInvalidAmount
		case stepConnect:
			kind = domain.ErrSessionRejected
		case stepUploadAsset, stepStoreMetadata:
			kind = domain.ErrStoreUnavailable
		default:
			kind = domain.ErrTransactionFailed
		}
	}
	return &FlowError{Kind: kind, State: state, Step: step, Err: err}
}

// kindOf returns the first taxonomy sentinel err carries.
func kindOf(err error) (error, bool) {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind, true
		}
	}
	return nil, false
}
