package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/storage"
)

func newActivity(id, seller string, createdAt int64) *domain.ListingActivity {
	return &domain.ListingActivity{
		ActivityID:    id,
		TokenContract: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		Seller:        seller,
		AssetLocator:  "https://ipfs.io/ipfs/asset",
		PriceWei:      "1000000000000000000",
		State:         domain.ActivityListed,
		CreatedAt:     createdAt,
	}
}

func TestActivityStore_InsertAndGet(t *testing.T) {
	store := NewActivityStore()
	ctx := context.Background()

	a := newActivity("act1", "0xSeller", 1704067200000)
	tokenID := "7"
	a.TokenID = &tokenID

	if err := store.Insert(ctx, a); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "act1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Seller != a.Seller {
		t.Errorf("Seller mismatch: got %s, want %s", got.Seller, a.Seller)
	}
	if got.TokenID == nil || *got.TokenID != "7" {
		t.Errorf("TokenID mismatch: got %v, want 7", got.TokenID)
	}
}

func TestActivityStore_DuplicateKey(t *testing.T) {
	store := NewActivityStore()
	ctx := context.Background()

	if err := store.Insert(ctx, newActivity("act1", "0xSeller", 1)); err != nil {
		t.Fatalf("first Insert failed: %v", err)
	}

	err := store.Insert(ctx, newActivity("act1", "0xOther", 2))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestActivityStore_InvalidInput(t *testing.T) {
	store := NewActivityStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("nil activity: expected ErrInvalidInput, got %v", err)
	}
	if err := store.Insert(ctx, newActivity("", "0xSeller", 1)); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("empty id: expected ErrInvalidInput, got %v", err)
	}
	if _, err := store.GetRecent(ctx, 0); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("zero limit: expected ErrInvalidInput, got %v", err)
	}
}

func TestActivityStore_NotFound(t *testing.T) {
	store := NewActivityStore()

	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestActivityStore_GetBySeller(t *testing.T) {
	store := NewActivityStore()
	ctx := context.Background()

	_ = store.Insert(ctx, newActivity("b", "0xAbC", 300))
	_ = store.Insert(ctx, newActivity("a", "0xabc", 100))
	_ = store.Insert(ctx, newActivity("c", "0xother", 200))

	got, err := store.GetBySeller(ctx, "0xABC")
	if err != nil {
		t.Fatalf("GetBySeller failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(got))
	}
	if got[0].ActivityID != "a" || got[1].ActivityID != "b" {
		t.Errorf("wrong order: %s, %s", got[0].ActivityID, got[1].ActivityID)
	}
}

func TestActivityStore_GetRecent(t *testing.T) {
	store := NewActivityStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = store.Insert(ctx, newActivity(fmt.Sprintf("act%d", i), "0xSeller", int64(i*100)))
	}

	got, err := store.GetRecent(ctx, 3)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 activities, got %d", len(got))
	}
	want := []string{"act4", "act3", "act2"}
	for i, id := range want {
		if got[i].ActivityID != id {
			t.Errorf("position %d: got %s, want %s", i, got[i].ActivityID, id)
		}
	}
}

func TestActivityStore_ReturnsCopies(t *testing.T) {
	store := NewActivityStore()
	ctx := context.Background()

	a := newActivity("act1", "0xSeller", 1)
	_ = store.Insert(ctx, a)
	a.Seller = "mutated"

	got, _ := store.GetByID(ctx, "act1")
	if got.Seller != "0xSeller" {
		t.Errorf("stored record was mutated: %s", got.Seller)
	}
}

func TestActivityStore_ConcurrentInsert(t *testing.T) {
	store := NewActivityStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Insert(ctx, newActivity(fmt.Sprintf("act%d", i), "0xSeller", int64(i)))
		}(i)
	}
	wg.Wait()

	got, err := store.GetBySeller(ctx, "0xSeller")
	if err != nil {
		t.Fatalf("GetBySeller failed: %v", err)
	}
	if len(got) != 50 {
		t.Errorf("expected 50 activities, got %d", len(got))
	}
}
