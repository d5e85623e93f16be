package stub

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"nft-marketplace/internal/chain"
	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/market"
)

// Call records one gateway invocation.
type Call struct {
	Method string
	Args   []interface{}
}

// Gateway implements market.Gateway for testing. Fields are read at call
// time; set them before running a flow.
type Gateway struct {
	mu    sync.Mutex
	calls []Call

	Token common.Address

	MintTokenID *big.Int
	MintErr     error
	Fee         *big.Int
	FeeErr      error
	ListErr     error
	FetchErr    error
	Items       []domain.RawListing

	// TokenURIs maps token id (decimal) to metadata locator.
	TokenURIs map[string]string
	// TokenURIErrs fails TokenURI for specific token ids.
	TokenURIErrs map[string]error
	// TokenURIDelays delays TokenURI for specific token ids.
	TokenURIDelays map[string]time.Duration
}

// NewGateway creates a stub gateway.
func NewGateway() *Gateway {
	return &Gateway{
		Token:          common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		MintTokenID:    big.NewInt(1),
		Fee:            big.NewInt(25_000_000_000_000_000),
		TokenURIs:      make(map[string]string),
		TokenURIErrs:   make(map[string]error),
		TokenURIDelays: make(map[string]time.Duration),
	}
}

var _ market.Gateway = (*Gateway)(nil)

func (g *Gateway) record(method string, args ...interface{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, Call{Method: method, Args: args})
}

// Calls returns the recorded calls in order.
func (g *Gateway) Calls() []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Call(nil), g.calls...)
}

// Methods returns the recorded method names in order.
func (g *Gateway) Methods() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]string, len(g.calls))
	for i, c := range g.calls {
		names[i] = c.Method
	}
	return names
}

// Mint returns MintTokenID or MintErr.
func (g *Gateway) Mint(_ context.Context, metadataLocator string, session *chain.Session) (*domain.MintReceipt, error) {
	g.record("Mint", metadataLocator, session.Account)
	if g.MintErr != nil {
		return nil, g.MintErr
	}
	return &domain.MintReceipt{
		TokenID: new(big.Int).Set(g.MintTokenID),
		TxHash:  common.BigToHash(big.NewInt(0x1001)),
	}, nil
}

// ListingFee returns Fee or FeeErr.
func (g *Gateway) ListingFee(_ context.Context, _ chain.Connection) (*big.Int, error) {
	g.record("ListingFee")
	if g.FeeErr != nil {
		return nil, g.FeeErr
	}
	return new(big.Int).Set(g.Fee), nil
}

// ListForSale returns ListErr.
func (g *Gateway) ListForSale(_ context.Context, tokenContract common.Address, tokenID, price, listingFee *big.Int, session *chain.Session) (common.Hash, error) {
	g.record("ListForSale", tokenContract, tokenID, price, listingFee, session.Account)
	if g.ListErr != nil {
		return common.Hash{}, g.ListErr
	}
	return common.BigToHash(big.NewInt(0x2002)), nil
}

// FetchMintedItems returns Items or FetchErr.
func (g *Gateway) FetchMintedItems(_ context.Context, _ chain.Connection, caller common.Address) ([]domain.RawListing, error) {
	g.record("FetchMintedItems", caller)
	if g.FetchErr != nil {
		return nil, g.FetchErr
	}
	return append([]domain.RawListing(nil), g.Items...), nil
}

// TokenURI returns the configured locator for tokenID.
func (g *Gateway) TokenURI(ctx context.Context, _ chain.Connection, tokenID *big.Int) (string, error) {
	g.record("TokenURI", tokenID)
	key := tokenID.String()

	g.mu.Lock()
	delay := g.TokenURIDelays[key]
	failErr := g.TokenURIErrs[key]
	uri, ok := g.TokenURIs[key]
	g.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	if failErr != nil {
		return "", failErr
	}
	if !ok {
		return "", fmt.Errorf("%w: no token %s", domain.ErrTransactionFailed, key)
	}
	return uri, nil
}

// TokenContract returns Token.
func (g *Gateway) TokenContract() common.Address {
	return g.Token
}
