package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ComputeActivityID computes a deterministic activity_id using SHA256.
// Formula: SHA256(lower(token_contract)|lower(seller)|asset_locator|price_wei|started_at)
// Returns hex-encoded hash (64 characters).
func ComputeActivityID(
	tokenContract string,
	seller string,
	assetLocator string,
	priceWei string,
	startedAt int64,
) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%d",
		strings.ToLower(tokenContract),
		strings.ToLower(seller),
		assetLocator,
		priceWei,
		startedAt,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
