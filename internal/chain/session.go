package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"nft-marketplace/internal/domain"
)

// Session binds a wallet account to the ability to sign transactions.
// Sessions are acquired per flow and never cached.
type Session struct {
	Account common.Address
	CanSign bool

	signer *bind.TransactOpts
}

// NewSession creates a session for account. A nil signer yields a
// read-only session.
func NewSession(account common.Address, signer *bind.TransactOpts) *Session {
	return &Session{
		Account: account,
		CanSign: signer != nil,
		signer:  signer,
	}
}

// Transactor returns signing options bound to ctx.
func (s *Session) Transactor(ctx context.Context) (*bind.TransactOpts, error) {
	if s == nil || !s.CanSign || s.signer == nil {
		return nil, fmt.Errorf("%w: session cannot sign", domain.ErrSessionRejected)
	}
	opts := *s.signer
	opts.Context = ctx
	return &opts, nil
}

// Provider obtains signing sessions and exposes the read-only connection.
type Provider interface {
	// Connect asks the wallet for approval and returns a fresh session.
	// Returns domain.ErrSessionRejected when the user declines or no wallet exists.
	Connect(ctx context.Context) (*Session, error)

	// ReadOnly returns a connection usable without a session. Never prompts.
	ReadOnly() Connection
}
