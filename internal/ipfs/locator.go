package ipfs

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ipfs/go-cid"
)

// DefaultGateway is the public gateway used to build locators.
const DefaultGateway = "https://ipfs.io"

// ErrInvalidLocator is returned when a locator carries no valid CID.
var ErrInvalidLocator = errors.New("invalid locator")

// FormatLocator builds the gateway URL for a content identifier.
func FormatLocator(gateway string, c cid.Cid) string {
	return strings.TrimRight(gateway, "/") + "/ipfs/" + c.String()
}

// ParseLocator extracts the CID from a gateway URL
// (https://<gateway>/ipfs/<cid>[/path]), an ipfs://<cid> URI or a bare CID.
func ParseLocator(locator string) (cid.Cid, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return cid.Undef, fmt.Errorf("%w: empty", ErrInvalidLocator)
	}

	var raw string
	switch {
	case strings.HasPrefix(locator, "ipfs://"):
		raw = strings.TrimPrefix(locator, "ipfs://")
		raw = strings.TrimPrefix(raw, "ipfs/")
	case strings.HasPrefix(locator, "http://"), strings.HasPrefix(locator, "https://"):
		u, err := url.Parse(locator)
		if err != nil {
			return cid.Undef, fmt.Errorf("%w: %v", ErrInvalidLocator, err)
		}
		idx := strings.Index(u.Path, "/ipfs/")
		if idx < 0 {
			return cid.Undef, fmt.Errorf("%w: no /ipfs/ path in %q", ErrInvalidLocator, locator)
		}
		raw = u.Path[idx+len("/ipfs/"):]
	default:
		raw = locator
	}

	// Drop any sub-path after the root CID.
	if slash := strings.IndexByte(raw, '/'); slash >= 0 {
		raw = raw[:slash]
	}

	c, err := cid.Decode(raw)
	if err != nil {
		return cid.Undef, fmt.Errorf("%w: %v", ErrInvalidLocator, err)
	}
	return c, nil
}

// resolveURL returns the URL to fetch for a locator.
// HTTP(S) locators are fetched as-is; CIDs are routed through the gateway.
func resolveURL(gateway, locator string) (string, error) {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		if _, err := url.Parse(locator); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidLocator, err)
		}
		return locator, nil
	}

	c, err := ParseLocator(locator)
	if err != nil {
		return "", err
	}
	return FormatLocator(gateway, c), nil
}
