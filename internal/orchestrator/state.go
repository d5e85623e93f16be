package orchestrator

// State is a position in a flow's state machine.
type State string

// Create-listing states. Linear; any step may move to StateFailed.
const (
	StateIdle           State = "IDLE"
	StateAssetStored    State = "ASSET_STORED"
	StateMetadataStored State = "METADATA_STORED"
	StateMinted         State = "MINTED"
	StateListed         State = "LISTED"
	StateFailed         State = "FAILED"
)

// Load-listings states. StateIdle and StateFailed are shared.
const (
	StateFetching  State = "FETCHING"
	StateResolving State = "RESOLVING"
	StateReady     State = "READY"
)

// Step names, used for metrics and error classification.
const (
	stepParsePrice    = "parse_price"
	stepUploadAsset   = "upload_asset"
	stepStoreMetadata = "store_metadata"
	stepConnect       = "connect"
	stepMint          = "mint"
	stepListingFee    = "listing_fee"
	stepList          = "list"
	stepFetch         = "fetch"
)

const (
	flowCreateListing = "create_listing"
	flowLoadListings  = "load_listings"
)

// Reasons an item is excluded from a load.
const (
	SkipTokenID  = "token_id"
	SkipTokenURI = "token_uri"
	SkipMetadata = "metadata"
)
