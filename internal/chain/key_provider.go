package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"

	"nft-marketplace/internal/domain"
)

// KeyProvider signs with a raw hex private key. Intended for development
// chains (e.g. a local hardhat node) and automation.
type KeyProvider struct {
	conn   Connection
	hexKey string
}

// NewKeyProvider creates a provider for hexKey (with or without 0x prefix).
func NewKeyProvider(conn Connection, hexKey string) *KeyProvider {
	return &KeyProvider{conn: conn, hexKey: hexKey}
}

// Compile-time interface check.
var _ Provider = (*KeyProvider)(nil)

// Connect derives a session from the configured key.
func (p *KeyProvider) Connect(ctx context.Context) (*Session, error) {
	hexKey := strings.TrimPrefix(strings.TrimSpace(p.hexKey), "0x")
	if hexKey == "" {
		return nil, fmt.Errorf("%w: no private key configured", domain.ErrSessionRejected)
	}

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key: %v", domain.ErrSessionRejected, err)
	}

	chainID, err := p.conn.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("read chain id: %w", err)
	}

	signer, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("%w: create transactor: %v", domain.ErrSessionRejected, err)
	}

	return NewSession(crypto.PubkeyToAddress(key.PublicKey), signer), nil
}

// ReadOnly returns the underlying connection.
func (p *KeyProvider) ReadOnly() Connection {
	return p.conn
}
