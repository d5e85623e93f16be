// Package app wires configuration into the marketplace collaborators
// shared by all binaries.
package app

import (
	"context"
	"fmt"
	"log"

	"nft-marketplace/internal/activityfeed"
	"nft-marketplace/internal/chain"
	"nft-marketplace/internal/config"
	"nft-marketplace/internal/ipfs"
	"nft-marketplace/internal/market"
	"nft-marketplace/internal/orchestrator"
	"nft-marketplace/internal/storage"
	"nft-marketplace/internal/storage/memory"
	"nft-marketplace/internal/storage/migrations"
	pgstore "nft-marketplace/internal/storage/postgres"
)

// App holds the constructed collaborators. Close releases them.
type App struct {
	Config       *config.Config
	Conn         chain.Connection
	Gateway      *market.Client
	Store        *ipfs.HTTPClient
	Sessions     chain.Provider
	Activity     storage.ActivityStore
	Feed         *activityfeed.Hub
	Orchestrator *orchestrator.Orchestrator

	closers []func()
}

// Options for New.
type Options struct {
	Logger  *log.Logger
	Verbose bool

	// Approver supplies keystore passphrases. Defaults to a terminal prompt.
	Approver chain.Approver

	// UseMemory keeps the activity journal in memory even when a DSN is set.
	UseMemory bool
}

// New dials the chain and builds every collaborator from cfg.
// Signing uses PrivateKey when set, else KeystorePath, else no wallet.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	a := &App{Config: cfg}

	client, err := chain.Dial(ctx, cfg.RPCEndpoint)
	if err != nil {
		return nil, err
	}
	a.Conn = client
	a.closers = append(a.closers, client.Close)

	a.Gateway, err = market.NewClient(client, cfg.NFT(), cfg.Market(),
		market.WithConfirmTimeout(cfg.ConfirmTimeout),
		market.WithLogger(logger),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create market client: %w", err)
	}

	a.Store = ipfs.NewHTTPClient(cfg.IPFSAPIURL, ipfs.WithGateway(cfg.IPFSGatewayURL))
	a.Sessions = newProvider(client, cfg, opts.Approver)

	activity, err := a.createActivityStore(ctx, cfg, opts.UseMemory)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Feed = activityfeed.NewHub()
	a.Activity = activityfeed.NewStore(activity, a.Feed)

	a.Orchestrator = orchestrator.New(orchestrator.Options{
		Store:         a.Store,
		Sessions:      a.Sessions,
		Gateway:       a.Gateway,
		ActivityStore: a.Activity,
		Logger:        logger,
		Verbose:       opts.Verbose,
		Concurrency:   cfg.Concurrency,
	})

	return a, nil
}

// Close releases connections in reverse creation order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func newProvider(conn chain.Connection, cfg *config.Config, approver chain.Approver) chain.Provider {
	switch {
	case cfg.PrivateKey != "":
		return chain.NewKeyProvider(conn, cfg.PrivateKey)
	case cfg.KeystorePath != "":
		if approver == nil {
			approver = chain.NewTerminalApprover()
		}
		return chain.NewKeystoreProvider(conn, cfg.KeystorePath, approver)
	default:
		return chain.NewReadOnlyProvider(conn)
	}
}

func (a *App) createActivityStore(ctx context.Context, cfg *config.Config, useMemory bool) (storage.ActivityStore, error) {
	if useMemory || cfg.PostgresDSN == "" {
		return memory.NewActivityStore(), nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.closers = append(a.closers, pool.Close)

	if _, err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return pgstore.NewActivityStore(pool), nil
}
