package stub

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"nft-marketplace/internal/chain"
	"nft-marketplace/internal/domain"
)

// Provider implements chain.Provider for testing.
type Provider struct {
	mu    sync.Mutex
	calls int

	// Account is the account every Connect returns.
	Account common.Address
	// Reject makes Connect fail with domain.ErrSessionRejected.
	Reject bool
	// Conn is returned from ReadOnly.
	Conn chain.Connection
}

// NewProvider creates a stub provider that approves sessions for account.
func NewProvider(account common.Address) *Provider {
	return &Provider{Account: account}
}

var _ chain.Provider = (*Provider)(nil)

// Connect returns a fresh signing session unless Reject is set.
func (p *Provider) Connect(_ context.Context) (*chain.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++

	if p.Reject {
		return nil, fmt.Errorf("%w: user declined", domain.ErrSessionRejected)
	}

	signer := &bind.TransactOpts{
		From:  p.Account,
		Value: new(big.Int),
	}
	return chain.NewSession(p.Account, signer), nil
}

// ReadOnly returns Conn.
func (p *Provider) ReadOnly() chain.Connection {
	return p.Conn
}

// ConnectCalls returns how many sessions were requested.
func (p *Provider) ConnectCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
