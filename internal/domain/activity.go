package domain

// ActivityState is the last state reached by a create-listing flow.
type ActivityState string

const (
	ActivityListed ActivityState = "LISTED"
	ActivityFailed ActivityState = "FAILED"
)

// ListingActivity records one create-listing attempt.
// Corresponds to listing_activity table in PostgreSQL.
type ListingActivity struct {
	ActivityID      string        `json:"activityId"`                // PRIMARY KEY, deterministic hash
	TokenContract   string        `json:"tokenContract"`             // hex address
	TokenID         *string       `json:"tokenId,omitempty"`         // decimal token id (nullable, absent before mint)
	Seller          string        `json:"seller"`                    // hex address (empty if session never acquired)
	AssetLocator    string        `json:"assetLocator"`              // image locator
	MetadataLocator *string       `json:"metadataLocator,omitempty"` // metadata locator (nullable)
	PriceWei        string        `json:"priceWei"`                  // decimal wei
	MintTx          *string       `json:"mintTx,omitempty"`          // mint tx hash (nullable)
	ListTx          *string       `json:"listTx,omitempty"`          // list tx hash (nullable)
	State           ActivityState `json:"state"`                     // LISTED | FAILED
	FailedStep      *string       `json:"failedStep,omitempty"`      // failed step, e.g. "connect" (nullable)
	Error           *string       `json:"error,omitempty"`           // failure message (nullable)
	CreatedAt       int64         `json:"createdAt"`                 // record creation timestamp (ms)
}
