package domain

// AssetMetadata is the JSON document stored in the content store at mint time.
// Field order is fixed so serialization is deterministic.
type AssetMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"` // asset locator
}
