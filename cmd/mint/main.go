// Package main mints an asset and lists it on the marketplace:
// upload asset → store metadata → mint → list for sale.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"nft-marketplace/internal/app"
	"nft-marketplace/internal/config"
	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/listing"
	"nft-marketplace/internal/orchestrator"
)

func main() {
	// Load .env file if exists
	config.LoadEnvFile(".env")

	os.Exit(run(os.Args[1:], os.Getenv, os.Stdout))
}

// run executes the command and returns the process exit status.
// Returning instead of exiting lets deferred cleanup run.
func run(args []string, getenv func(string) string, stdout io.Writer) int {
	logger := log.New(os.Stderr, "[mint] ", log.LstdFlags)

	cfg, err := config.FromLookup(getenv)
	if err != nil {
		logger.Printf("Error: %v", err)
		return 1
	}

	// Parse flags (env vars as defaults)
	fs := flag.NewFlagSet("mint", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	file := fs.String("file", "", "Path of the asset to upload")
	assetLocator := fs.String("asset", "", "Already stored asset locator (skips upload)")
	name := fs.String("name", "", "Item name")
	description := fs.String("description", "", "Item description")
	price := fs.String("price", "", "Sale price in ether, e.g. 1.5")
	asJSON := fs.Bool("json", false, "Print the result as JSON")
	verbose := fs.Bool("verbose", false, "Log every step")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := cfg.ValidateWriter(); err != nil {
		logger.Printf("Invalid configuration: %v", err)
		return 1
	}
	if *file == "" && *assetLocator == "" {
		logger.Print("--file or --asset is required")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{Logger: logger, Verbose: *verbose})
	if err != nil {
		logger.Printf("Failed to initialize: %v", err)
		return 1
	}
	defer a.Close()

	locator := *assetLocator
	if locator == "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			logger.Printf("Read asset: %v", err)
			return 1
		}
		locator, err = a.Orchestrator.UploadAsset(ctx, data)
		if err != nil {
			logger.Printf("Upload asset: %v", err)
			return exitCode(err)
		}
		logger.Printf("Asset stored at %s", locator)
	}

	result, err := a.Orchestrator.CreateListing(ctx, orchestrator.ListingInput{
		Name:         *name,
		Description:  *description,
		Price:        *price,
		AssetLocator: locator,
	})
	if err != nil {
		logger.Printf("Create listing failed: %v", err)
		return exitCode(err)
	}
	if result.State == orchestrator.StateIdle {
		logger.Print("Nothing to do: --name, --description and --price are required")
		return 2
	}

	if *asJSON {
		if err := printJSON(stdout, result); err != nil {
			logger.Printf("Encode result: %v", err)
			return 1
		}
		return 0
	}

	fmt.Fprintln(stdout, "Listing created:")
	fmt.Fprintf(stdout, "  Token ID:  %s\n", result.TokenID)
	fmt.Fprintf(stdout, "  Seller:    %s\n", result.Seller.Hex())
	fmt.Fprintf(stdout, "  Price:     %s ETH\n", listing.FormatEther(result.PriceWei))
	fmt.Fprintf(stdout, "  Fee:       %s ETH\n", listing.FormatEther(result.ListingFee))
	fmt.Fprintf(stdout, "  Metadata:  %s\n", result.MetadataLocator)
	fmt.Fprintf(stdout, "  Mint tx:   %s\n", result.MintTx.Hex())
	fmt.Fprintf(stdout, "  List tx:   %s\n", result.ListTx.Hex())
	return 0
}

// exitCode maps the failure kind to a process exit status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, listing.ErrInvalidAmount):
		return 2
	case errors.Is(err, domain.ErrSessionRejected):
		return 3
	case errors.Is(err, domain.ErrStoreUnavailable):
		return 4
	case errors.Is(err, domain.ErrTransactionFailed):
		return 5
	default:
		return 1
	}
}

func printJSON(w io.Writer, result *orchestrator.CreateResult) error {
	out := map[string]string{
		"state":           string(result.State),
		"tokenId":         result.TokenID.String(),
		"seller":          result.Seller.Hex(),
		"price":           listing.FormatEther(result.PriceWei),
		"assetLocator":    result.AssetLocator,
		"metadataLocator": result.MetadataLocator,
		"mintTx":          result.MintTx.Hex(),
		"listTx":          result.ListTx.Hex(),
		"activityId":      result.ActivityID,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
