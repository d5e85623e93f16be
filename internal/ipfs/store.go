// Package ipfs provides the content-addressed store used for NFT
// media and metadata documents.
package ipfs

import "context"

// Store defines the content store interface.
type Store interface {
	// Add stores a binary blob and returns its locator.
	Add(ctx context.Context, data []byte) (string, error)

	// AddJSON serializes v deterministically, stores it and returns its locator.
	AddJSON(ctx context.Context, v any) (string, error)

	// Resolve fetches the JSON document behind locator into v.
	// Every call re-fetches; nothing is cached.
	Resolve(ctx context.Context, locator string, v any) error
}
