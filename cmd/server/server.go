package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"nft-marketplace/internal/activityfeed"
	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/listing"
	"nft-marketplace/internal/observability"
	"nft-marketplace/internal/orchestrator"
	"nft-marketplace/internal/storage"
)

// maxAssetBytes bounds POST /api/assets bodies.
const maxAssetBytes = 32 << 20

// Flows is the orchestrator surface the server uses.
type Flows interface {
	UploadAsset(ctx context.Context, data []byte) (string, error)
	CreateListing(ctx context.Context, in orchestrator.ListingInput) (*orchestrator.CreateResult, error)
	LoadListings(ctx context.Context, opts orchestrator.LoadOptions) (*orchestrator.LoadResult, error)
}

// Server serves the marketplace API.
type Server struct {
	flows    Flows
	activity storage.ActivityStore
	feed     *activityfeed.Hub
	logger   *log.Logger

	// writeMu serializes create-listing requests; they sign from one account.
	writeMu sync.Mutex

	// State
	mu            sync.Mutex
	started       time.Time
	loads         int
	listingsMade  int
	listingErrors int
	lastLoad      time.Time
}

// NewServer creates a new Server. A nil feed disables /ws/activity.
func NewServer(flows Flows, activity storage.ActivityStore, feed *activityfeed.Hub, logger *log.Logger) *Server {
	return &Server{
		flows:    flows,
		activity: activity,
		feed:     feed,
		logger:   logger,
		started:  time.Now(),
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("GET /metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("GET /status", s.handleStatus)

	mux.HandleFunc("GET /api/listings", s.handleLoadListings)
	mux.HandleFunc("POST /api/listings", s.handleCreateListing)
	mux.HandleFunc("POST /api/assets", s.handleUploadAsset)
	mux.HandleFunc("GET /api/activity", s.handleActivity)
	if s.feed != nil {
		mux.Handle("GET /ws/activity", activityfeed.NewHandler(s.feed, nil, s.logger))
	}

	return mux
}

type skippedJSON struct {
	Index   int    `json:"index"`
	TokenID string `json:"tokenId"`
	Reason  string `json:"reason"`
	Error   string `json:"error"`
}

type loadResponse struct {
	State    string                  `json:"state"`
	Fetched  int                     `json:"fetched"`
	Listings []domain.DisplayListing `json:"listings"`
	Skipped  []skippedJSON           `json:"skipped"`
}

func (s *Server) handleLoadListings(w http.ResponseWriter, r *http.Request) {
	opts := orchestrator.LoadOptions{OwnerScoped: r.URL.Query().Get("mine") == "true"}

	result, err := s.flows.LoadListings(r.Context(), opts)
	if err != nil {
		s.writeFlowError(w, err)
		return
	}

	s.mu.Lock()
	s.loads++
	s.lastLoad = time.Now()
	s.mu.Unlock()

	resp := loadResponse{
		State:    string(result.State),
		Fetched:  result.Fetched,
		Listings: result.Listings,
		Skipped:  make([]skippedJSON, 0, len(result.Skipped)),
	}
	for _, sk := range result.Skipped {
		resp.Skipped = append(resp.Skipped, skippedJSON{
			Index:   sk.Index,
			TokenID: sk.TokenID,
			Reason:  sk.Reason,
			Error:   sk.Err.Error(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type createRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	AssetLocator string `json:"assetLocator"`
}

type createResponse struct {
	State           string `json:"state"`
	TokenID         string `json:"tokenId"`
	Seller          string `json:"seller"`
	Price           string `json:"price"`
	MetadataLocator string `json:"metadataLocator"`
	MintTx          string `json:"mintTx"`
	ListTx          string `json:"listTx"`
	ActivityID      string `json:"activityId,omitempty"`
}

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.writeMu.Lock()
	result, err := s.flows.CreateListing(r.Context(), orchestrator.ListingInput{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		AssetLocator: req.AssetLocator,
	})
	s.writeMu.Unlock()
	if err != nil {
		s.mu.Lock()
		s.listingErrors++
		s.mu.Unlock()
		s.writeFlowError(w, err)
		return
	}
	if result.State == orchestrator.StateIdle {
		writeError(w, http.StatusUnprocessableEntity, "name, description, price and assetLocator are required")
		return
	}

	s.mu.Lock()
	s.listingsMade++
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, createResponse{
		State:           string(result.State),
		TokenID:         result.TokenID.String(),
		Seller:          result.Seller.Hex(),
		Price:           listing.FormatEther(result.PriceWei),
		MetadataLocator: result.MetadataLocator,
		MintTx:          result.MintTx.Hex(),
		ListTx:          result.ListTx.Hex(),
		ActivityID:      result.ActivityID,
	})
}

func (s *Server) handleUploadAsset(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAssetBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "asset too large")
		return
	}

	locator, err := s.flows.UploadAsset(r.Context(), data)
	if err != nil {
		if errors.Is(err, orchestrator.ErrEmptyAsset) {
			writeError(w, http.StatusBadRequest, "empty asset")
			return
		}
		s.writeFlowError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"locator": locator})
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	if s.activity == nil {
		writeJSON(w, http.StatusOK, []*domain.ListingActivity{})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	var (
		activities []*domain.ListingActivity
		err        error
	)
	if seller := r.URL.Query().Get("seller"); seller != "" {
		activities, err = s.activity.GetBySeller(r.Context(), seller)
		if len(activities) > limit {
			activities = activities[len(activities)-limit:]
		}
	} else {
		activities, err = s.activity.GetRecent(r.Context(), limit)
	}
	if err != nil {
		s.logger.Printf("Activity query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "activity unavailable")
		return
	}
	if activities == nil {
		activities = []*domain.ListingActivity{}
	}

	writeJSON(w, http.StatusOK, activities)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status := map[string]interface{}{
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
		"loads":          s.loads,
		"listings_made":  s.listingsMade,
		"listing_errors": s.listingErrors,
	}
	if s.feed != nil {
		status["feed_subscribers"] = s.feed.Subscribers()
		status["feed_dropped"] = s.feed.Dropped()
	}
	if !s.lastLoad.IsZero() {
		status["last_load"] = s.lastLoad.UTC().Format(time.RFC3339)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, status)
}

// writeFlowError maps the failure kind to an HTTP status.
func (s *Server) writeFlowError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, listing.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionRejected):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrStoreUnavailable),
		errors.Is(err, domain.ErrResolveFailed),
		errors.Is(err, domain.ErrTransactionFailed):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		s.logger.Printf("Request failed: %v", err)
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
