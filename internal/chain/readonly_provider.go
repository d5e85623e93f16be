package chain

import (
	"context"
	"fmt"

	"nft-marketplace/internal/domain"
)

// ReadOnlyProvider has no wallet. Every Connect is rejected; reads still
// work through ReadOnly.
type ReadOnlyProvider struct {
	conn Connection
}

// NewReadOnlyProvider creates a provider without signing capability.
func NewReadOnlyProvider(conn Connection) *ReadOnlyProvider {
	return &ReadOnlyProvider{conn: conn}
}

// Compile-time interface check.
var _ Provider = (*ReadOnlyProvider)(nil)

// Connect always fails with domain.ErrSessionRejected.
func (p *ReadOnlyProvider) Connect(context.Context) (*Session, error) {
	return nil, fmt.Errorf("%w: no wallet available", domain.ErrSessionRejected)
}

// ReadOnly returns the underlying connection.
func (p *ReadOnlyProvider) ReadOnly() Connection {
	return p.conn
}
