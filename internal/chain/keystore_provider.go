package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"

	"nft-marketplace/internal/domain"
)

// ErrApprovalDeclined is returned by an Approver when the user declines.
var ErrApprovalDeclined = errors.New("approval declined")

// Approver asks the user to approve a session for account and returns
// the passphrase that unlocks it.
type Approver interface {
	Approve(ctx context.Context, account common.Address) (string, error)
}

// ApproverFunc adapts a function to Approver.
type ApproverFunc func(ctx context.Context, account common.Address) (string, error)

// Approve calls f.
func (f ApproverFunc) Approve(ctx context.Context, account common.Address) (string, error) {
	return f(ctx, account)
}

// KeystoreProvider unlocks an encrypted go-ethereum keystore file after
// the user approves the session.
type KeystoreProvider struct {
	conn     Connection
	path     string
	approver Approver
}

// NewKeystoreProvider creates a provider for the keystore file at path.
func NewKeystoreProvider(conn Connection, path string, approver Approver) *KeystoreProvider {
	return &KeystoreProvider{conn: conn, path: path, approver: approver}
}

// Compile-time interface check.
var _ Provider = (*KeystoreProvider)(nil)

// Connect prompts for approval and decrypts the key.
func (p *KeystoreProvider) Connect(ctx context.Context) (*Session, error) {
	if p.path == "" {
		return nil, fmt.Errorf("%w: no keystore configured", domain.ErrSessionRejected)
	}

	keyJSON, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read keystore: %v", domain.ErrSessionRejected, err)
	}

	var header struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(keyJSON, &header); err != nil {
		return nil, fmt.Errorf("%w: parse keystore: %v", domain.ErrSessionRejected, err)
	}
	account := common.HexToAddress(header.Address)

	if p.approver == nil {
		return nil, fmt.Errorf("%w: no approver available", domain.ErrSessionRejected)
	}
	passphrase, err := p.approver.Approve(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionRejected, err)
	}
	if passphrase == "" {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionRejected, ErrApprovalDeclined)
	}

	key, err := keystore.DecryptKey(keyJSON, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: unlock %s: %v", domain.ErrSessionRejected, account.Hex(), err)
	}

	chainID, err := p.conn.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("read chain id: %w", err)
	}

	signer, err := bind.NewKeyedTransactorWithChainID(key.PrivateKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("%w: create transactor: %v", domain.ErrSessionRejected, err)
	}

	return NewSession(key.Address, signer), nil
}

// ReadOnly returns the underlying connection.
func (p *KeystoreProvider) ReadOnly() Connection {
	return p.conn
}
