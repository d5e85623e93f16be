package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// RawListing is a marketplace item as returned by fetchMintedNfts.
// Amounts are wei; identifiers are uint256.
type RawListing struct {
	ItemID        *big.Int
	TokenContract common.Address
	TokenID       *big.Int
	Seller        common.Address
	Owner         common.Address
	Price         *big.Int // smallest unit
	Sold          bool
}

// DisplayListing is a RawListing joined with its resolved metadata.
// Recomputed on every load, never persisted.
type DisplayListing struct {
	TokenID     uint64         `json:"tokenId"`
	Owner       common.Address `json:"owner"`
	Seller      common.Address `json:"seller"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Price       string         `json:"price"` // ether units
}

// MintReceipt is the confirmed result of a mintToken transaction.
type MintReceipt struct {
	TokenID *big.Int
	TxHash  common.Hash
}
