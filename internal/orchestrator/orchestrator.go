// Package orchestrator coordinates the marketplace flows.
// Create listing: store asset → store metadata → connect → mint → fee → list.
// Load listings: fetch → resolve each item concurrently → normalize → order.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"nft-marketplace/internal/chain"
	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/idhash"
	"nft-marketplace/internal/ipfs"
	"nft-marketplace/internal/listing"
	"nft-marketplace/internal/market"
	"nft-marketplace/internal/observability"
	"nft-marketplace/internal/storage"
)

// Orchestrator drives the create-listing and load-listings flows.
// Collaborators are injected; the orchestrator holds no session state
// between flows.
type Orchestrator struct {
	store    ipfs.Store
	sessions chain.Provider
	gateway  market.Gateway
	activity storage.ActivityStore

	logger      *log.Logger
	verbose     bool
	concurrency int
	now         func() time.Time

	// createMu serializes create-listing flows: they share one signing
	// account, and concurrent sends would race on its pending nonce.
	createMu sync.Mutex
}

// Options for creating Orchestrator.
type Options struct {
	// Required collaborators
	Store    ipfs.Store
	Sessions chain.Provider
	Gateway  market.Gateway

	// Optional journal of create-listing outcomes
	ActivityStore storage.ActivityStore

	// Options
	Logger      *log.Logger
	Verbose     bool
	Concurrency int              // max parallel item resolves, 0 = unbounded
	Now         func() time.Time // defaults to time.Now
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		store:       opts.Store,
		sessions:    opts.Sessions,
		gateway:     opts.Gateway,
		activity:    opts.ActivityStore,
		logger:      logger,
		verbose:     opts.Verbose,
		concurrency: opts.Concurrency,
		now:         now,
	}
}

// ListingInput holds the user-supplied create-listing form.
type ListingInput struct {
	Name         string
	Description  string
	Price        string // ether units, e.g. "1.5"
	AssetLocator string // produced by UploadAsset
}

// Ready reports whether every field is present.
func (in ListingInput) Ready() bool {
	return strings.TrimSpace(in.Name) != "" &&
		strings.TrimSpace(in.Description) != "" &&
		strings.TrimSpace(in.Price) != "" &&
		strings.TrimSpace(in.AssetLocator) != ""
}

// CreateResult contains the outcome of a create-listing flow.
// Fields are filled up to the last state reached.
type CreateResult struct {
	State           State
	AssetLocator    string
	MetadataLocator string
	Seller          common.Address
	TokenID         *big.Int
	PriceWei        *big.Int
	ListingFee      *big.Int
	MintTx          common.Hash
	ListTx          common.Hash
	ActivityID      string
}

// UploadAsset stores the asset bytes and returns their locator.
// The locator is the AssetLocator of a later ListingInput.
func (o *Orchestrator) UploadAsset(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyAsset
	}

	var locator string
	err := o.step(stepUploadAsset, func() error {
		var err error
		locator, err = o.store.Add(ctx, data)
		return err
	})
	if err != nil {
		return "", newFlowError(stepUploadAsset, StateIdle, err)
	}

	o.log("Asset stored: %s", locator)
	return locator, nil
}

// CreateListing runs the create-listing flow. Input that is not Ready
// returns StateIdle with a nil error and performs no remote call.
// A malformed price is rejected before any remote call with a *FlowError
// in StateIdle. Step failures return a *FlowError and a result in StateFailed.
// At most one create-listing flow runs at a time.
func (o *Orchestrator) CreateListing(ctx context.Context, in ListingInput) (*CreateResult, error) {
	result := &CreateResult{State: StateIdle}
	if !in.Ready() {
		o.log("Create listing: input not ready")
		return result, nil
	}

	price, err := listing.ParseEther(in.Price)
	if err != nil {
		return result, newFlowError(stepParsePrice, StateIdle, fmt.Errorf("parse price %q: %w", in.Price, err))
	}

	o.createMu.Lock()
	defer o.createMu.Unlock()

	begin := time.Now()
	started := o.now()
	result.AssetLocator = in.AssetLocator
	result.PriceWei = price
	result.State = StateAssetStored

	flowErr := o.runCreate(ctx, in, result)

	status := "listed"
	if flowErr != nil {
		status = "failed"
	} else {
		observability.MarkListingSuccess(o.now().Unix())
	}
	observability.RecordFlowRun(flowCreateListing, status, time.Since(begin).Seconds())

	o.journal(ctx, in, result, flowErr, started)

	if flowErr != nil {
		result.State = StateFailed
		return result, flowErr
	}
	return result, nil
}

// runCreate performs the create-listing steps in order, advancing
// result.State after each success.
func (o *Orchestrator) runCreate(ctx context.Context, in ListingInput, result *CreateResult) *FlowError {
	// Step 1: metadata document
	meta := domain.AssetMetadata{
		Name:        in.Name,
		Description: in.Description,
		Image:       in.AssetLocator,
	}
	err := o.step(stepStoreMetadata, func() error {
		var err error
		result.MetadataLocator, err = o.store.AddJSON(ctx, meta)
		return err
	})
	if err != nil {
		return newFlowError(stepStoreMetadata, result.State, err)
	}
	result.State = StateMetadataStored
	o.log("Metadata stored: %s", result.MetadataLocator)

	// Step 2: fresh session for this flow
	var session *chain.Session
	err = o.step(stepConnect, func() error {
		var err error
		session, err = o.sessions.Connect(ctx)
		return err
	})
	if err != nil {
		return newFlowError(stepConnect, result.State, err)
	}
	result.Seller = session.Account

	// Step 3: mint
	err = o.step(stepMint, func() error {
		receipt, err := o.gateway.Mint(ctx, result.MetadataLocator, session)
		if err != nil {
			return err
		}
		result.TokenID = receipt.TokenID
		result.MintTx = receipt.TxHash
		return nil
	})
	if err != nil {
		return newFlowError(stepMint, result.State, err)
	}
	result.State = StateMinted
	o.log("Minted token %s (tx %s)", result.TokenID, result.MintTx.Hex())

	// Step 4: listing fee
	err = o.step(stepListingFee, func() error {
		var err error
		result.ListingFee, err = o.gateway.ListingFee(ctx, o.sessions.ReadOnly())
		return err
	})
	if err != nil {
		return newFlowError(stepListingFee, result.State, err)
	}

	// Step 5 (price conversion) ran during validation.
	// Step 6: list for sale
	err = o.step(stepList, func() error {
		var err error
		result.ListTx, err = o.gateway.ListForSale(ctx,
			o.gateway.TokenContract(), result.TokenID, result.PriceWei, result.ListingFee, session)
		return err
	})
	if err != nil {
		return newFlowError(stepList, result.State, err)
	}
	result.State = StateListed
	o.log("Listed token %s for %s ether (tx %s)",
		result.TokenID, listing.FormatEther(result.PriceWei), result.ListTx.Hex())

	return nil
}

// journal records the create-listing outcome. Journal failures are logged
// and never change the flow result.
func (o *Orchestrator) journal(ctx context.Context, in ListingInput, result *CreateResult, flowErr *FlowError, started time.Time) {
	if o.activity == nil {
		return
	}

	token := o.gateway.TokenContract().Hex()
	seller := ""
	if result.Seller != (common.Address{}) {
		seller = result.Seller.Hex()
	}

	a := &domain.ListingActivity{
		ActivityID:    idhash.ComputeActivityID(token, seller, in.AssetLocator, result.PriceWei.String(), started.UnixMilli()),
		TokenContract: token,
		Seller:        seller,
		AssetLocator:  in.AssetLocator,
		PriceWei:      result.PriceWei.String(),
		State:         domain.ActivityListed,
		CreatedAt:     o.now().UnixMilli(),
	}
	if result.MetadataLocator != "" {
		a.MetadataLocator = &result.MetadataLocator
	}
	if result.TokenID != nil {
		tokenID := result.TokenID.String()
		a.TokenID = &tokenID
	}
	if result.MintTx != (common.Hash{}) {
		mintTx := result.MintTx.Hex()
		a.MintTx = &mintTx
	}
	if result.ListTx != (common.Hash{}) {
		listTx := result.ListTx.Hex()
		a.ListTx = &listTx
	}
	if flowErr != nil {
		failedStep := flowErr.Step
		message := flowErr.Error()
		a.State = domain.ActivityFailed
		a.FailedStep = &failedStep
		a.Error = &message
	}

	if err := o.activity.Insert(ctx, a); err != nil {
		o.logger.Printf("[orchestrator] journal activity %s: %v", a.ActivityID, err)
		return
	}
	result.ActivityID = a.ActivityID
}

// LoadOptions selects what LoadListings fetches.
type LoadOptions struct {
	// OwnerScoped connects a session and fetches the items visible to its
	// account. Without it the fetch needs no session.
	OwnerScoped bool
}

// LoadResult contains the outcome of a load-listings flow.
type LoadResult struct {
	State    State
	Listings []domain.DisplayListing // fetch order, failed items excluded
	Fetched  int
	Skipped  []ItemFailure
}

// ItemFailure describes one item excluded from a load.
type ItemFailure struct {
	Index   int
	TokenID string
	Reason  string
	Err     error
}

// LoadListings runs the load-listings flow. A failing item is excluded
// from Listings and reported in Skipped; only fetch or session failures
// fail the flow.
func (o *Orchestrator) LoadListings(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	begin := time.Now()
	result, err := o.runLoad(ctx, opts)

	status := "ready"
	if err != nil {
		status = "failed"
	} else {
		observability.MarkLoadSuccess(o.now().Unix())
		observability.RecordListingsLoaded(len(result.Listings))
	}
	observability.RecordFlowRun(flowLoadListings, status, time.Since(begin).Seconds())

	return result, err
}

func (o *Orchestrator) runLoad(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	result := &LoadResult{State: StateIdle, Listings: []domain.DisplayListing{}}

	conn := o.sessions.ReadOnly()

	var caller common.Address
	if opts.OwnerScoped {
		session, err := o.sessions.Connect(ctx)
		if err != nil {
			result.State = StateFailed
			return result, newFlowError(stepConnect, StateIdle, err)
		}
		caller = session.Account
	}

	// Phase 1: fetch
	result.State = StateFetching
	o.log("Fetching listings (caller %s)...", caller.Hex())
	raws, err := o.gateway.FetchMintedItems(ctx, conn, caller)
	if err != nil {
		result.State = StateFailed
		return result, newFlowError(stepFetch, StateFetching, err)
	}
	result.Fetched = len(raws)
	o.log("  Found %d items", len(raws))

	if len(raws) == 0 {
		result.State = StateReady
		return result, nil
	}

	// Phase 2: resolve every item concurrently, each into its own slot
	result.State = StateResolving
	resolved := make([]itemResult, len(raws))

	var g errgroup.Group
	if o.concurrency > 0 {
		g.SetLimit(o.concurrency)
	}
	for i := range raws {
		g.Go(func() error {
			resolved[i] = o.resolveItem(ctx, conn, raws[i])
			return nil
		})
	}
	_ = g.Wait() // items never return errors

	// Phase 3: stable filter in fetch order
	for i, item := range resolved {
		if item.err != nil {
			observability.RecordListingSkipped(item.reason)
			result.Skipped = append(result.Skipped, ItemFailure{
				Index:   i,
				TokenID: tokenIDString(raws[i].TokenID),
				Reason:  item.reason,
				Err:     item.err,
			})
			o.log("  Skipped item %d (token %s): %s: %v", i, tokenIDString(raws[i].TokenID), item.reason, item.err)
			continue
		}
		result.Listings = append(result.Listings, item.listing)
	}

	result.State = StateReady
	o.log("Loaded %d listings (%d skipped)", len(result.Listings), len(result.Skipped))
	return result, nil
}

// itemResult is the settled outcome of one item resolve.
type itemResult struct {
	listing domain.DisplayListing
	reason  string
	err     error
}

// resolveItem looks up the token URI, resolves the metadata document and
// normalizes the pair.
func (o *Orchestrator) resolveItem(ctx context.Context, conn chain.Connection, raw domain.RawListing) itemResult {
	if !listing.FitsTokenID(raw) {
		return itemResult{reason: SkipTokenID, err: fmt.Errorf("token id %s out of range", tokenIDString(raw.TokenID))}
	}

	uri, err := o.gateway.TokenURI(ctx, conn, raw.TokenID)
	if err != nil {
		return itemResult{reason: SkipTokenURI, err: err}
	}

	start := time.Now()
	var meta domain.AssetMetadata
	err = o.store.Resolve(ctx, uri, &meta)
	observability.RecordContentStoreCall("resolve", time.Since(start).Seconds(), err)
	if err != nil {
		return itemResult{reason: SkipMetadata, err: err}
	}

	return itemResult{listing: listing.Normalize(raw, meta)}
}

// step runs fn and records its duration.
func (o *Orchestrator) step(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	seconds := time.Since(start).Seconds()
	observability.RecordStep(name, seconds, err)
	if name == stepUploadAsset || name == stepStoreMetadata {
		observability.RecordContentStoreCall("add", seconds, err)
	}
	return err
}

func tokenIDString(id *big.Int) string {
	if id == nil {
		return "<nil>"
	}
	return id.String()
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		o.logger.Printf("[orchestrator] "+format, args...)
	}
}
