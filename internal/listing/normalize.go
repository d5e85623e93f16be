// Package listing converts raw marketplace items into display records.
package listing

import "nft-marketplace/internal/domain"

// Normalize joins a raw on-chain item with its resolved metadata.
// Callers only pass items whose token id fits in uint64 (see FitsTokenID).
func Normalize(raw domain.RawListing, meta domain.AssetMetadata) domain.DisplayListing {
	var tokenID uint64
	if raw.TokenID != nil {
		tokenID = raw.TokenID.Uint64()
	}

	return domain.DisplayListing{
		TokenID:     tokenID,
		Owner:       raw.Owner,
		Seller:      raw.Seller,
		Name:        meta.Name,
		Description: meta.Description,
		Image:       meta.Image,
		Price:       FormatEther(raw.Price),
	}
}

// FitsTokenID reports whether the raw token id converts to a host integer
// without loss.
func FitsTokenID(raw domain.RawListing) bool {
	return raw.TokenID != nil && raw.TokenID.Sign() >= 0 && raw.TokenID.IsUint64()
}
