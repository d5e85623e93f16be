package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/storage"
)

// ActivityStore is an in-memory implementation of storage.ActivityStore.
type ActivityStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ListingActivity // keyed by activity_id
}

// NewActivityStore creates a new in-memory activity store.
func NewActivityStore() *ActivityStore {
	return &ActivityStore{
		data: make(map[string]*domain.ListingActivity),
	}
}

// Insert adds a new activity. Returns ErrDuplicateKey if activity_id exists.
func (s *ActivityStore) Insert(_ context.Context, a *domain.ListingActivity) error {
	if a == nil || a.ActivityID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.ActivityID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	activityCopy := *a
	s.data[a.ActivityID] = &activityCopy
	return nil
}

// GetByID retrieves an activity by its ID. Returns ErrNotFound if not exists.
func (s *ActivityStore) GetByID(_ context.Context, activityID string) (*domain.ListingActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[activityID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	activityCopy := *a
	return &activityCopy, nil
}

// GetBySeller retrieves all activities of a seller, ordered by created_at ASC.
// Addresses compare case-insensitively.
func (s *ActivityStore) GetBySeller(_ context.Context, seller string) ([]*domain.ListingActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ListingActivity
	for _, a := range s.data {
		if strings.EqualFold(a.Seller, seller) {
			activityCopy := *a
			result = append(result, &activityCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ActivityID < result[j].ActivityID
	})

	return result, nil
}

// GetRecent retrieves up to limit activities, newest first.
func (s *ActivityStore) GetRecent(_ context.Context, limit int) ([]*domain.ListingActivity, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.ListingActivity, 0, len(s.data))
	for _, a := range s.data {
		activityCopy := *a
		result = append(result, &activityCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].ActivityID < result[j].ActivityID
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.ActivityStore = (*ActivityStore)(nil)
