package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/observability"
	"nft-marketplace/internal/storage"
)

// ActivityStore implements storage.ActivityStore using PostgreSQL.
type ActivityStore struct {
	pool *Pool
}

// NewActivityStore creates a new ActivityStore.
func NewActivityStore(pool *Pool) *ActivityStore {
	return &ActivityStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ActivityStore = (*ActivityStore)(nil)

const activityColumns = `
	activity_id, token_contract, token_id, seller, asset_locator, metadata_locator,
	price_wei, mint_tx, list_tx, state, failed_step, error, created_at
`

// Insert adds a new activity. Returns ErrDuplicateKey if activity_id exists.
func (s *ActivityStore) Insert(ctx context.Context, a *domain.ListingActivity) (err error) {
	if a == nil || a.ActivityID == "" {
		return storage.ErrInvalidInput
	}
	defer observeQuery("insert_activity", time.Now(), &err)

	query := `
		INSERT INTO listing_activity (` + activityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = s.pool.Exec(ctx, query,
		a.ActivityID,
		a.TokenContract,
		a.TokenID,
		a.Seller,
		a.AssetLocator,
		a.MetadataLocator,
		a.PriceWei,
		a.MintTx,
		a.ListTx,
		string(a.State),
		a.FailedStep,
		a.Error,
		a.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
		}
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// GetByID retrieves an activity by its ID. Returns ErrNotFound if not exists.
func (s *ActivityStore) GetByID(ctx context.Context, activityID string) (_ *domain.ListingActivity, err error) {
	defer observeQuery("get_activity", time.Now(), &err)

	query := `SELECT ` + activityColumns + ` FROM listing_activity WHERE activity_id = $1`

	a, err := scanActivity(s.pool.QueryRow(ctx, query, activityID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get activity by id: %w", err)
	}
	return a, nil
}

// GetBySeller retrieves all activities of a seller, ordered by created_at ASC.
func (s *ActivityStore) GetBySeller(ctx context.Context, seller string) (_ []*domain.ListingActivity, err error) {
	defer observeQuery("get_activity_by_seller", time.Now(), &err)

	query := `
		SELECT ` + activityColumns + `
		FROM listing_activity
		WHERE LOWER(seller) = LOWER($1)
		ORDER BY created_at ASC, activity_id ASC
	`

	rows, err := s.pool.Query(ctx, query, seller)
	if err != nil {
		return nil, fmt.Errorf("get activities by seller: %w", err)
	}
	defer rows.Close()

	return scanActivities(rows)
}

// GetRecent retrieves up to limit activities, newest first.
func (s *ActivityStore) GetRecent(ctx context.Context, limit int) (_ []*domain.ListingActivity, err error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}
	defer observeQuery("get_recent_activity", time.Now(), &err)

	query := `
		SELECT ` + activityColumns + `
		FROM listing_activity
		ORDER BY created_at DESC, activity_id ASC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent activities: %w", err)
	}
	defer rows.Close()

	return scanActivities(rows)
}

func observeQuery(operation string, start time.Time, err *error) {
	observability.RecordDBQuery("postgres", operation, time.Since(start).Seconds(), *err)
}

// scanActivity scans a single row into a ListingActivity.
func scanActivity(row pgx.Row) (*domain.ListingActivity, error) {
	var a domain.ListingActivity
	var state string

	err := row.Scan(
		&a.ActivityID,
		&a.TokenContract,
		&a.TokenID,
		&a.Seller,
		&a.AssetLocator,
		&a.MetadataLocator,
		&a.PriceWei,
		&a.MintTx,
		&a.ListTx,
		&state,
		&a.FailedStep,
		&a.Error,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.State = domain.ActivityState(state)
	return &a, nil
}

// scanActivities scans multiple rows into a slice of ListingActivity.
func scanActivities(rows pgx.Rows) ([]*domain.ListingActivity, error) {
	var activities []*domain.ListingActivity

	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		activities = append(activities, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity rows: %w", err)
	}

	return activities, nil
}
