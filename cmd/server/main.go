// Package main provides the marketplace HTTP service:
// - /api/listings: load (GET) and create (POST) listings
// - /api/assets: store an asset and return its locator
// - /api/activity: journal of create-listing attempts
// - /ws/activity: live stream of newly journaled attempts
// - /health, /metrics, /status
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"nft-marketplace/internal/app"
	"nft-marketplace/internal/chain"
	"nft-marketplace/internal/config"
)

func main() {
	// Load .env file if exists
	config.LoadEnvFile(".env")

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Parse flags (env vars as defaults)
	cfg.RegisterFlags(flag.CommandLine)
	addr := flag.String("addr", ":8080", "HTTP listen address")
	useMemory := flag.Bool("use-memory", false, "Keep the activity journal in memory instead of PostgreSQL")
	verbose := flag.Bool("verbose", false, "Log every flow step")
	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	if !*useMemory && cfg.PostgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}
	if cfg.PrivateKey == "" {
		logger.Printf("No %s set: create-listing requests will be rejected", config.EnvPrivateKey)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, app.Options{
		Logger:    logger,
		Verbose:   *verbose,
		UseMemory: *useMemory,
		Approver:  declineApprover,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	server := NewServer(a.Orchestrator, a.Activity, a.Feed, logger)

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Graceful shutdown failed: %v", err)
			os.Exit(1)
		}
	}()

	logger.Printf("Starting HTTP server on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// declineApprover refuses keystore sessions; there is no terminal to prompt on.
var declineApprover = chain.ApproverFunc(func(ctx context.Context, account common.Address) (string, error) {
	return "", chain.ErrApprovalDeclined
})
