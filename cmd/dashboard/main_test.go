package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"nft-marketplace/internal/config"
	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/orchestrator"
)

func testEnv(nft string) func(string) string {
	env := map[string]string{
		// Nothing listens here, so the fetch fails fast.
		config.EnvRPCEndpoint:   "http://127.0.0.1:1",
		config.EnvNFTAddress:    nft,
		config.EnvMarketAddress: "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512",
	}
	return func(key string) string { return env[key] }
}

func TestRun_InvalidConfig(t *testing.T) {
	var out bytes.Buffer
	if got := run(nil, testEnv("not-an-address"), &out); got != 1 {
		t.Errorf("expected exit 1, got %d", got)
	}
}

func TestRun_FetchFailureReturns(t *testing.T) {
	var out bytes.Buffer
	if got := run(nil, testEnv("0x5FbDB2315678afecb367f032d93F642f64180aa3"), &out); got != 1 {
		t.Errorf("expected exit 1, got %d", got)
	}
	if out.Len() != 0 {
		t.Errorf("expected no stdout, got %q", out.String())
	}
}

func TestPrintTable(t *testing.T) {
	var empty bytes.Buffer
	printTable(&empty, &orchestrator.LoadResult{Listings: []domain.DisplayListing{}})
	if got := empty.String(); got != "No items minted yet\n" {
		t.Errorf("unexpected empty output %q", got)
	}

	var out bytes.Buffer
	printTable(&out, &orchestrator.LoadResult{
		Fetched: 2,
		Listings: []domain.DisplayListing{
			{TokenID: 7, Name: "Sunset", Price: "1.5", Seller: common.HexToAddress("0x01"), Image: "https://ipfs.io/ipfs/img"},
		},
	})
	text := out.String()
	for _, want := range []string{"TOKEN", "Sunset", "1.5", "https://ipfs.io/ipfs/img", "1 of 2 items shown"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}
