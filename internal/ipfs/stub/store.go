package stub

import (
	"context"
	"fmt"
	"sync"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"

	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/ipfs"
)

// Gateway is the gateway prefix used for stub locators.
const Gateway = "https://ipfs.stub"

// Store implements ipfs.Store in memory. Content identifiers are real
// CIDv1 (raw codec, sha2-256), so locators round-trip through ipfs.ParseLocator.
type Store struct {
	mu      sync.Mutex
	blobs   map[string][]byte // keyed by CID string
	added   []string          // locators in add order
	resolve int

	// AddErr, when set, fails every Add.
	AddErr error
	// ResolveErrs fails Resolve for specific locators.
	ResolveErrs map[string]error
}

// NewStore creates a new stub content store.
func NewStore() *Store {
	return &Store{
		blobs:       make(map[string][]byte),
		ResolveErrs: make(map[string]error),
	}
}

var _ ipfs.Store = (*Store)(nil)

// Add stores data and returns its locator.
func (s *Store) Add(_ context.Context, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.AddErr != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, s.AddErr)
	}

	hash, err := mh.Sum(data, mh.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	id := cid.NewCidV1(cid.Raw, hash)

	blob := make([]byte, len(data))
	copy(blob, data)
	s.blobs[id.String()] = blob

	locator := ipfs.FormatLocator(Gateway, id)
	s.added = append(s.added, locator)
	return locator, nil
}

// AddJSON stores the document encoding of v.
func (s *Store) AddJSON(ctx context.Context, v any) (string, error) {
	data, err := ipfs.MarshalDocument(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return s.Add(ctx, data)
}

// Resolve decodes the document stored under locator.
func (s *Store) Resolve(_ context.Context, locator string, v any) error {
	s.mu.Lock()
	s.resolve++
	failErr := s.ResolveErrs[locator]
	s.mu.Unlock()

	if failErr != nil {
		return fmt.Errorf("%w: %v", domain.ErrResolveFailed, failErr)
	}

	id, err := ipfs.ParseLocator(locator)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrResolveFailed, err)
	}

	s.mu.Lock()
	data, ok := s.blobs[id.String()]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s not found", domain.ErrResolveFailed, locator)
	}

	if err := ipfs.UnmarshalDocument(data, v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrResolveFailed, err)
	}
	return nil
}

// Get returns the raw bytes stored under locator.
func (s *Store) Get(locator string) ([]byte, bool) {
	id, err := ipfs.ParseLocator(locator)
	if err != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[id.String()]
	return data, ok
}

// Added returns locators in the order they were added.
func (s *Store) Added() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.added...)
}

// ResolveCalls returns how many times Resolve was called.
func (s *Store) ResolveCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolve
}
