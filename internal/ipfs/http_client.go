package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"nft-marketplace/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout     = 60 * time.Second
	DefaultMaxDocBytes = 4 << 20
)

// HTTPClient implements Store against a kubo-compatible HTTP API
// (/api/v0/add) and resolves through a public gateway.
// Failures are returned to the caller; nothing is retried.
type HTTPClient struct {
	apiURL      string
	gateway     string
	client      *http.Client
	pin         bool
	maxDocBytes int64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithGateway sets the gateway used to build and resolve locators.
func WithGateway(gateway string) ClientOption {
	return func(c *HTTPClient) {
		c.gateway = strings.TrimRight(gateway, "/")
	}
}

// WithPin controls whether added content is pinned by the API node.
func WithPin(pin bool) ClientOption {
	return func(c *HTTPClient) {
		c.pin = pin
	}
}

// WithMaxDocumentSize bounds the size of resolved JSON documents.
func WithMaxDocumentSize(n int64) ClientOption {
	return func(c *HTTPClient) {
		c.maxDocBytes = n
	}
}

// NewHTTPClient creates a client for the API at apiURL
// (e.g. https://ipfs.infura.io:5001).
func NewHTTPClient(apiURL string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		apiURL:      strings.TrimSuffix(strings.TrimRight(apiURL, "/"), "/api/v0"),
		gateway:     DefaultGateway,
		client:      &http.Client{Timeout: DefaultTimeout},
		pin:         true,
		maxDocBytes: DefaultMaxDocBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ Store = (*HTTPClient)(nil)

// addResponse is the /api/v0/add response body.
type addResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// Add uploads data and returns its gateway locator.
func (c *HTTPClient) Add(ctx context.Context, data []byte) (string, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "file")
	if err != nil {
		return "", fmt.Errorf("%w: create form: %v", domain.ErrStoreUnavailable, err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("%w: write form: %v", domain.ErrStoreUnavailable, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("%w: close form: %v", domain.ErrStoreUnavailable, err)
	}

	endpoint := fmt.Sprintf("%s/api/v0/add?pin=%t&cid-version=1", c.apiURL, c.pin)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", domain.ErrStoreUnavailable, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: http request: %v", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", domain.ErrStoreUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d: %s", domain.ErrStoreUnavailable, resp.StatusCode, string(respBody))
	}

	var added addResponse
	if err := json.Unmarshal(respBody, &added); err != nil {
		return "", fmt.Errorf("%w: unmarshal response: %v", domain.ErrStoreUnavailable, err)
	}

	id, err := cid.Decode(added.Hash)
	if err != nil {
		return "", fmt.Errorf("%w: invalid cid %q: %v", domain.ErrStoreUnavailable, added.Hash, err)
	}

	return FormatLocator(c.gateway, id), nil
}

// AddJSON stores the JSON encoding of v.
func (c *HTTPClient) AddJSON(ctx context.Context, v any) (string, error) {
	data, err := MarshalDocument(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return c.Add(ctx, data)
}

// Resolve fetches and decodes the JSON document behind locator.
func (c *HTTPClient) Resolve(ctx context.Context, locator string, v any) error {
	target, err := resolveURL(c.gateway, locator)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrResolveFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", domain.ErrResolveFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: http request: %v", domain.ErrResolveFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: unexpected status %d", domain.ErrResolveFailed, target, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxDocBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrResolveFailed, err)
	}

	if err := UnmarshalDocument(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrResolveFailed, target, err)
	}
	return nil
}
