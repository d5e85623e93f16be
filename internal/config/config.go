// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"nft-marketplace/internal/ipfs"
)

// Environment variable names.
const (
	EnvRPCEndpoint    = "ETH_RPC_ENDPOINT"
	EnvNFTAddress     = "NFT_ADDRESS"
	EnvMarketAddress  = "MARKET_ADDRESS"
	EnvIPFSAPIURL     = "IPFS_API_URL"
	EnvIPFSGatewayURL = "IPFS_GATEWAY_URL"
	EnvKeystorePath   = "KEYSTORE_PATH"
	EnvPrivateKey     = "PRIVATE_KEY"
	EnvPostgresDSN    = "POSTGRES_DSN"
	EnvConfirmTimeout = "CONFIRM_TIMEOUT"
	EnvConcurrency    = "RESOLVE_CONCURRENCY"
)

// Defaults.
const (
	DefaultRPCEndpoint    = "http://127.0.0.1:8545"
	DefaultIPFSAPIURL     = "https://ipfs.infura.io:5001"
	DefaultConfirmTimeout = 2 * time.Minute
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds process-wide settings. Immutable after load.
type Config struct {
	RPCEndpoint    string
	NFTAddress     string
	MarketAddress  string
	IPFSAPIURL     string
	IPFSGatewayURL string
	KeystorePath   string
	PrivateKey     string
	PostgresDSN    string
	ConfirmTimeout time.Duration
	Concurrency    int
}

// FromEnv reads the configuration from the process environment.
func FromEnv() (*Config, error) {
	return FromLookup(os.Getenv)
}

// FromLookup reads the configuration through getenv.
func FromLookup(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		RPCEndpoint:    valueOr(getenv(EnvRPCEndpoint), DefaultRPCEndpoint),
		NFTAddress:     strings.TrimSpace(getenv(EnvNFTAddress)),
		MarketAddress:  strings.TrimSpace(getenv(EnvMarketAddress)),
		IPFSAPIURL:     valueOr(getenv(EnvIPFSAPIURL), DefaultIPFSAPIURL),
		IPFSGatewayURL: valueOr(getenv(EnvIPFSGatewayURL), ipfs.DefaultGateway),
		KeystorePath:   strings.TrimSpace(getenv(EnvKeystorePath)),
		PrivateKey:     strings.TrimSpace(getenv(EnvPrivateKey)),
		PostgresDSN:    strings.TrimSpace(getenv(EnvPostgresDSN)),
		ConfirmTimeout: DefaultConfirmTimeout,
	}

	if v := strings.TrimSpace(getenv(EnvConfirmTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", EnvConfirmTimeout, err)
		}
		cfg.ConfirmTimeout = d
	}
	if v := strings.TrimSpace(getenv(EnvConcurrency)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", EnvConcurrency, err)
		}
		cfg.Concurrency = n
	}

	return cfg, nil
}

// Validate checks the settings every binary needs.
func (c *Config) Validate() error {
	var problems []string

	if err := checkURL(c.RPCEndpoint, "http", "https", "ws", "wss"); err != nil {
		problems = append(problems, fmt.Sprintf("rpc endpoint: %v", err))
	}
	if !common.IsHexAddress(c.NFTAddress) {
		problems = append(problems, fmt.Sprintf("nft address %q is not a hex address", c.NFTAddress))
	}
	if !common.IsHexAddress(c.MarketAddress) {
		problems = append(problems, fmt.Sprintf("market address %q is not a hex address", c.MarketAddress))
	}
	if err := checkURL(c.IPFSGatewayURL, "http", "https"); err != nil {
		problems = append(problems, fmt.Sprintf("ipfs gateway: %v", err))
	}
	if c.ConfirmTimeout < 0 {
		problems = append(problems, "confirm timeout must not be negative")
	}
	if c.Concurrency < 0 {
		problems = append(problems, "resolve concurrency must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ValidateWriter additionally checks the settings the create-listing flow
// needs: a content store API and a signer.
func (c *Config) ValidateWriter() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := checkURL(c.IPFSAPIURL, "http", "https"); err != nil {
		return fmt.Errorf("%w: ipfs api: %v", ErrInvalidConfig, err)
	}
	if c.KeystorePath == "" && c.PrivateKey == "" {
		return fmt.Errorf("%w: one of %s or %s is required", ErrInvalidConfig, EnvKeystorePath, EnvPrivateKey)
	}
	return nil
}

// NFT returns the token contract address.
func (c *Config) NFT() common.Address {
	return common.HexToAddress(c.NFTAddress)
}

// Market returns the marketplace contract address.
func (c *Config) Market() common.Address {
	return common.HexToAddress(c.MarketAddress)
}

func checkURL(raw string, schemes ...string) error {
	if raw == "" {
		return errors.New("empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%q must be a %s URL", raw, strings.Join(schemes, "/"))
}

func valueOr(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
