package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nft-marketplace/internal/activityfeed"
	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/listing"
	"nft-marketplace/internal/orchestrator"
	"nft-marketplace/internal/storage/memory"
)

type fakeFlows struct {
	upload func(ctx context.Context, data []byte) (string, error)
	create func(ctx context.Context, in orchestrator.ListingInput) (*orchestrator.CreateResult, error)
	load   func(ctx context.Context, opts orchestrator.LoadOptions) (*orchestrator.LoadResult, error)
}

func (f *fakeFlows) UploadAsset(ctx context.Context, data []byte) (string, error) {
	return f.upload(ctx, data)
}

func (f *fakeFlows) CreateListing(ctx context.Context, in orchestrator.ListingInput) (*orchestrator.CreateResult, error) {
	return f.create(ctx, in)
}

func (f *fakeFlows) LoadListings(ctx context.Context, opts orchestrator.LoadOptions) (*orchestrator.LoadResult, error) {
	return f.load(ctx, opts)
}

func newTestServer(t *testing.T, flows *fakeFlows) (*Server, *memory.ActivityStore) {
	t.Helper()
	store := memory.NewActivityStore()
	return NewServer(flows, store, activityfeed.NewHub(), log.New(io.Discard, "", 0)), store
}

func do(t *testing.T, s *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(t, &fakeFlows{})
	rec := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_LoadListings(t *testing.T) {
	var gotOpts orchestrator.LoadOptions
	flows := &fakeFlows{
		load: func(ctx context.Context, opts orchestrator.LoadOptions) (*orchestrator.LoadResult, error) {
			gotOpts = opts
			return &orchestrator.LoadResult{
				State:   orchestrator.StateReady,
				Fetched: 2,
				Listings: []domain.DisplayListing{
					{TokenID: 1, Name: "A", Price: "1.5"},
				},
				Skipped: []orchestrator.ItemFailure{
					{Index: 1, TokenID: "2", Reason: orchestrator.SkipMetadata, Err: errors.New("bad json")},
				},
			}, nil
		},
	}
	s, _ := newTestServer(t, flows)

	rec := do(t, s, http.MethodGet, "/api/listings?mine=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotOpts.OwnerScoped)

	var resp loadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "READY", resp.State)
	assert.Equal(t, 2, resp.Fetched)
	require.Len(t, resp.Listings, 1)
	assert.Equal(t, "A", resp.Listings[0].Name)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, "metadata", resp.Skipped[0].Reason)
	assert.Equal(t, "bad json", resp.Skipped[0].Error)
}

func TestServer_LoadListings_FetchFailure(t *testing.T) {
	flows := &fakeFlows{
		load: func(ctx context.Context, opts orchestrator.LoadOptions) (*orchestrator.LoadResult, error) {
			return nil, fmt.Errorf("fetch: %w", domain.ErrTransactionFailed)
		},
	}
	s, _ := newTestServer(t, flows)

	rec := do(t, s, http.MethodGet, "/api/listings", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestServer_CreateListing(t *testing.T) {
	var got orchestrator.ListingInput
	flows := &fakeFlows{
		create: func(ctx context.Context, in orchestrator.ListingInput) (*orchestrator.CreateResult, error) {
			got = in
			return &orchestrator.CreateResult{
				State:    orchestrator.StateListed,
				TokenID:  big.NewInt(7),
				Seller:   common.HexToAddress("0x01"),
				PriceWei: big.NewInt(1_500_000_000_000_000_000),
				MintTx:   common.HexToHash("0xaa"),
				ListTx:   common.HexToHash("0xbb"),
			}, nil
		},
	}
	s, _ := newTestServer(t, flows)

	body := `{"name":"A","description":"d","price":"1.5","assetLocator":"https://ipfs.io/ipfs/x"}`
	rec := do(t, s, http.MethodPost, "/api/listings", strings.NewReader(body))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, orchestrator.ListingInput{Name: "A", Description: "d", Price: "1.5", AssetLocator: "https://ipfs.io/ipfs/x"}, got)

	var resp createResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "LISTED", resp.State)
	assert.Equal(t, "7", resp.TokenID)
	assert.Equal(t, "1.5", resp.Price)
}

func TestServer_CreateListing_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		result *orchestrator.CreateResult
		err    error
		want   int
	}{
		{name: "bad json", body: "{", want: http.StatusBadRequest},
		{name: "not ready", body: `{}`, result: &orchestrator.CreateResult{State: orchestrator.StateIdle}, want: http.StatusUnprocessableEntity},
		{name: "invalid price", body: `{}`, err: fmt.Errorf("parse price: %w", listing.ErrInvalidAmount), want: http.StatusBadRequest},
		{name: "session rejected", body: `{}`, err: fmt.Errorf("connect: %w", domain.ErrSessionRejected), want: http.StatusForbidden},
		{name: "store unavailable", body: `{}`, err: fmt.Errorf("store: %w", domain.ErrStoreUnavailable), want: http.StatusBadGateway},
		{name: "unknown", body: `{}`, err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flows := &fakeFlows{
				create: func(ctx context.Context, in orchestrator.ListingInput) (*orchestrator.CreateResult, error) {
					return tt.result, tt.err
				},
			}
			s, _ := newTestServer(t, flows)
			rec := do(t, s, http.MethodPost, "/api/listings", strings.NewReader(tt.body))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestServer_CreateListing_Serialized(t *testing.T) {
	var mu sync.Mutex
	active, maxSeen := 0, 0
	flows := &fakeFlows{
		create: func(ctx context.Context, in orchestrator.ListingInput) (*orchestrator.CreateResult, error) {
			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(20 * time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
			return &orchestrator.CreateResult{
				State:    orchestrator.StateListed,
				TokenID:  big.NewInt(1),
				PriceWei: big.NewInt(1),
			}, nil
		},
	}
	s, _ := newTestServer(t, flows)
	handler := s.Routes()

	const requests = 4
	codes := make([]int, requests)
	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := `{"name":"A","description":"d","price":"1","assetLocator":"https://ipfs.io/ipfs/x"}`
			req := httptest.NewRequest(http.MethodPost, "/api/listings", strings.NewReader(body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusCreated, code, "request %d", i)
	}
	assert.Equal(t, 1, maxSeen)
}

func TestServer_UploadAsset(t *testing.T) {
	var got []byte
	flows := &fakeFlows{
		upload: func(ctx context.Context, data []byte) (string, error) {
			if len(data) == 0 {
				return "", orchestrator.ErrEmptyAsset
			}
			got = data
			return "https://ipfs.io/ipfs/bafy", nil
		},
	}
	s, _ := newTestServer(t, flows)

	rec := do(t, s, http.MethodPost, "/api/assets", strings.NewReader("png-bytes"))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []byte("png-bytes"), got)
	assert.Contains(t, rec.Body.String(), "https://ipfs.io/ipfs/bafy")

	rec = do(t, s, http.MethodPost, "/api/assets", strings.NewReader(""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Activity(t *testing.T) {
	s, store := newTestServer(t, &fakeFlows{})
	ctx := context.Background()
	for i, seller := range []string{"0xAA", "0xbb", "0xaa"} {
		require.NoError(t, store.Insert(ctx, &domain.ListingActivity{
			ActivityID: fmt.Sprintf("a%d", i),
			Seller:     seller,
			State:      domain.ActivityListed,
			CreatedAt:  int64(i + 1),
		}))
	}

	rec := do(t, s, http.MethodGet, "/api/activity?seller=0xaa", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var bySeller []domain.ListingActivity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bySeller))
	require.Len(t, bySeller, 2)
	assert.Equal(t, "a0", bySeller[0].ActivityID)

	rec = do(t, s, http.MethodGet, "/api/activity?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var recent []domain.ListingActivity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recent))
	require.Len(t, recent, 1)
	assert.Equal(t, "a2", recent[0].ActivityID)

	rec = do(t, s, http.MethodGet, "/api/activity?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Status(t *testing.T) {
	flows := &fakeFlows{
		load: func(ctx context.Context, opts orchestrator.LoadOptions) (*orchestrator.LoadResult, error) {
			return &orchestrator.LoadResult{State: orchestrator.StateReady, Listings: []domain.DisplayListing{}}, nil
		},
	}
	s, _ := newTestServer(t, flows)
	do(t, s, http.MethodGet, "/api/listings", nil)

	rec := do(t, s, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.EqualValues(t, 1, status["loads"])
	assert.Contains(t, status, "last_load")
	assert.EqualValues(t, 0, status["feed_subscribers"])
}
