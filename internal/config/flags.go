package config

import "flag"

// RegisterFlags binds the common flags to c. Current values (from the
// environment) become the flag defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.RPCEndpoint, "rpc-endpoint", c.RPCEndpoint, "Ethereum JSON-RPC endpoint (http, https, ws, wss)")
	fs.StringVar(&c.NFTAddress, "nft-address", c.NFTAddress, "Token contract address")
	fs.StringVar(&c.MarketAddress, "market-address", c.MarketAddress, "Marketplace contract address")
	fs.StringVar(&c.IPFSAPIURL, "ipfs-api", c.IPFSAPIURL, "IPFS HTTP API base URL")
	fs.StringVar(&c.IPFSGatewayURL, "ipfs-gateway", c.IPFSGatewayURL, "IPFS gateway used in locators")
	fs.StringVar(&c.KeystorePath, "keystore", c.KeystorePath, "Path to an encrypted keystore file")
	fs.StringVar(&c.PostgresDSN, "postgres-dsn", c.PostgresDSN, "PostgreSQL connection string for the activity journal")
	fs.DurationVar(&c.ConfirmTimeout, "confirm-timeout", c.ConfirmTimeout, "Max wait for a transaction receipt")
	fs.IntVar(&c.Concurrency, "concurrency", c.Concurrency, "Max parallel metadata resolves (0 = unbounded)")
}
