package storage

import (
	"context"

	"nft-marketplace/internal/domain"
)

// ActivityStore provides access to listing_activity storage.
// Records are written once per create-listing attempt and never updated.
type ActivityStore interface {
	// Insert adds a new activity record. Returns ErrDuplicateKey if activity_id exists.
	Insert(ctx context.Context, a *domain.ListingActivity) error

	// GetByID retrieves an activity by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, activityID string) (*domain.ListingActivity, error)

	// GetBySeller retrieves all activities of a seller, ordered by created_at ASC.
	GetBySeller(ctx context.Context, seller string) ([]*domain.ListingActivity, error)

	// GetRecent retrieves up to limit activities, newest first.
	GetRecent(ctx context.Context, limit int) ([]*domain.ListingActivity, error)
}
