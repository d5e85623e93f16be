// Package chain provides the read-only chain connection and user-approved
// signing sessions.
package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Connection is a read/write view of the chain.
// *ethclient.Client satisfies it.
type Connection interface {
	bind.ContractBackend
	bind.DeployBackend

	// ChainID returns the chain id used for transaction signing.
	ChainID(ctx context.Context) (*big.Int, error)
}

// Compile-time interface check.
var _ Connection = (*ethclient.Client)(nil)

// Dial opens a connection to an http(s) or ws(s) RPC endpoint.
func Dial(ctx context.Context, endpoint string) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	return client, nil
}
