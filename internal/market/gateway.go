// Package market is the typed façade over the deployed token and
// marketplace contracts.
package market

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"nft-marketplace/internal/chain"
	"nft-marketplace/internal/domain"
)

// Gateway defines the contract operations used by marketplace flows.
// All amounts are wei.
type Gateway interface {
	// Mint submits mintToken(metadataLocator), waits for confirmation and
	// returns the token id taken from the first emitted event.
	Mint(ctx context.Context, metadataLocator string, session *chain.Session) (*domain.MintReceipt, error)

	// ListingFee reads the marketplace listing fee.
	ListingFee(ctx context.Context, conn chain.Connection) (*big.Int, error)

	// ListForSale submits mintNft(tokenContract, tokenID, price) paying
	// listingFee and waits for confirmation.
	ListForSale(ctx context.Context, tokenContract common.Address, tokenID, price, listingFee *big.Int, session *chain.Session) (common.Hash, error)

	// FetchMintedItems returns the marketplace items visible to caller at
	// call time, in contract order.
	FetchMintedItems(ctx context.Context, conn chain.Connection, caller common.Address) ([]domain.RawListing, error)

	// TokenURI returns the metadata locator of a token.
	TokenURI(ctx context.Context, conn chain.Connection, tokenID *big.Int) (string, error)

	// TokenContract returns the token contract address.
	TokenContract() common.Address
}
