// Package main prints the marketplace items with their metadata.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"nft-marketplace/internal/app"
	"nft-marketplace/internal/config"
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
	logger := log.New(os.Stderr, "[dashboard] ", log.LstdFlags)

	cfg, err := config.FromLookup(getenv)
	if err != nil {
		logger.Printf("Error: %v", err)
		return 1
	}

	// Parse flags (env vars as defaults)
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	mine := fs.Bool("mine", false, "Connect a wallet and show only items visible to its account")
	asJSON := fs.Bool("json", false, "Print listings as JSON")
	verbose := fs.Bool("verbose", false, "Log every step")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := cfg.Validate(); err != nil {
		logger.Printf("Invalid configuration: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{Logger: logger, Verbose: *verbose, UseMemory: true})
	if err != nil {
		logger.Printf("Failed to initialize: %v", err)
		return 1
	}
	defer a.Close()

	result, err := a.Orchestrator.LoadListings(ctx, orchestrator.LoadOptions{OwnerScoped: *mine})
	if err != nil {
		logger.Printf("Load listings failed: %v", err)
		return 1
	}

	for _, skipped := range result.Skipped {
		logger.Printf("Skipped token %s (%s): %v", skipped.TokenID, skipped.Reason, skipped.Err)
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Listings); err != nil {
			logger.Printf("Encode listings: %v", err)
			return 1
		}
		return 0
	}

	printTable(stdout, result)
	return 0
}

func printTable(w io.Writer, result *orchestrator.LoadResult) {
	if len(result.Listings) == 0 {
		fmt.Fprintln(w, "No items minted yet")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOKEN\tNAME\tPRICE (ETH)\tSELLER\tOWNER\tIMAGE")
	for _, l := range result.Listings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", l.TokenID, l.Name, l.Price, l.Seller.Hex(), l.Owner.Hex(), l.Image)
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%d of %d items shown\n", len(result.Listings), result.Fetched)
}
