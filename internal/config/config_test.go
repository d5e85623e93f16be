package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func validEnv() map[string]string {
	return map[string]string{
		EnvRPCEndpoint:   "http://127.0.0.1:8545",
		EnvNFTAddress:    "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		EnvMarketAddress: "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512",
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookup(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, DefaultRPCEndpoint, cfg.RPCEndpoint)
	assert.Equal(t, DefaultIPFSAPIURL, cfg.IPFSAPIURL)
	assert.Equal(t, "https://ipfs.io", cfg.IPFSGatewayURL)
	assert.Equal(t, DefaultConfirmTimeout, cfg.ConfirmTimeout)
	assert.Zero(t, cfg.Concurrency)
}

func TestFromLookup_Values(t *testing.T) {
	env := validEnv()
	env[EnvConfirmTimeout] = "30s"
	env[EnvConcurrency] = "4"
	env[EnvPostgresDSN] = " postgres://u:p@localhost/db "

	cfg, err := FromLookup(lookup(env))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.ConfirmTimeout)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "postgres://u:p@localhost/db", cfg.PostgresDSN)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", cfg.NFT().Hex())
	assert.NoError(t, cfg.Validate())
}

func TestFromLookup_BadNumbers(t *testing.T) {
	_, err := FromLookup(lookup(map[string]string{EnvConfirmTimeout: "soon"}))
	assert.Error(t, err)

	_, err = FromLookup(lookup(map[string]string{EnvConcurrency: "many"}))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(env map[string]string)
		wantErr bool
	}{
		{"valid", func(map[string]string) {}, false},
		{"ws endpoint", func(env map[string]string) { env[EnvRPCEndpoint] = "wss://node.example/ws" }, false},
		{"bad endpoint scheme", func(env map[string]string) { env[EnvRPCEndpoint] = "ftp://node" }, true},
		{"missing nft address", func(env map[string]string) { delete(env, EnvNFTAddress) }, true},
		{"bad market address", func(env map[string]string) { env[EnvMarketAddress] = "0x1234" }, true},
		{"bad gateway", func(env map[string]string) { env[EnvIPFSGatewayURL] = "ipfs.io" }, true},
		{"negative concurrency", func(env map[string]string) { env[EnvConcurrency] = "-1" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := validEnv()
			tt.mutate(env)

			cfg, err := FromLookup(lookup(env))
			require.NoError(t, err)

			err = cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateWriter(t *testing.T) {
	env := validEnv()
	cfg, err := FromLookup(lookup(env))
	require.NoError(t, err)

	assert.ErrorIs(t, cfg.ValidateWriter(), ErrInvalidConfig)

	cfg.PrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	assert.NoError(t, cfg.ValidateWriter())

	cfg.IPFSAPIURL = "not a url"
	assert.ErrorIs(t, cfg.ValidateWriter(), ErrInvalidConfig)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\n" +
		"NFTM_TEST_PLAIN=one\n" +
		"export NFTM_TEST_EXPORTED = two\n" +
		"NFTM_TEST_QUOTED=\"three\"\n" +
		"NFTM_TEST_EXISTING=file\n" +
		"not a pair\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("NFTM_TEST_EXISTING", "env")
	for _, key := range []string{"NFTM_TEST_PLAIN", "NFTM_TEST_EXPORTED", "NFTM_TEST_QUOTED"} {
		t.Setenv(key, "")
	}

	LoadEnvFile(path)

	assert.Equal(t, "one", os.Getenv("NFTM_TEST_PLAIN"))
	assert.Equal(t, "two", os.Getenv("NFTM_TEST_EXPORTED"))
	assert.Equal(t, "three", os.Getenv("NFTM_TEST_QUOTED"))
	assert.Equal(t, "env", os.Getenv("NFTM_TEST_EXISTING"))
}

func TestLoadEnvFile_Missing(t *testing.T) {
	LoadEnvFile(filepath.Join(t.TempDir(), "absent.env"))
}

func TestRegisterFlags_OverrideEnv(t *testing.T) {
	cfg, err := FromLookup(lookup(validEnv()))
	require.NoError(t, err)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--rpc-endpoint", "ws://127.0.0.1:8546", "--concurrency", "8"}))

	assert.Equal(t, "ws://127.0.0.1:8546", cfg.RPCEndpoint)
	assert.Equal(t, 8, cfg.Concurrency)
	// Untouched flags keep env values
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", cfg.NFTAddress)
}
