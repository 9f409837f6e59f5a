package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/talentflow/internal/cache"
	"github.com/jonathan/talentflow/internal/client"
	"github.com/jonathan/talentflow/internal/config"
	"github.com/jonathan/talentflow/internal/db"
	"github.com/jonathan/talentflow/internal/observability"
	"github.com/spf13/cobra"
)

// loadConfig resolves the configuration for cmd: file, then environment, then
// flags, then defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	// Step 1: Load config file if provided
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	// Step 2: Environment overrides the file
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, fmt.Errorf("failed to read environment: %w", err)
	}

	// Step 3: Apply CLI overrides, only for flags explicitly set
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = apiURL
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if flags.Changed("port") {
		cfg.Port = servePort
	}
	if flags.Changed("store") {
		cfg.StoreDriver = storeDriver
		cfg.StoreDSN = ""
	}
	if flags.Changed("dsn") {
		cfg.StoreDSN = storeDSN
	}

	// Step 4: Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.Verbose && configPath != "" {
		log.Printf("Loaded config from: %s", configPath)
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg config.Config) (db.Store, error) {
	store, err := db.Open(ctx, cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}
	return store, nil
}

func openCache(ctx context.Context, cfg config.Config) *cache.Redis {
	return cache.NewRedis(ctx, cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      time.Duration(cfg.CacheTTL),
		Prefix:   "talentflow",
	})
}

// invalidateAll drops every cached page, e.g. after writes that bypassed the service.
func invalidateAll(ctx context.Context, c *cache.Redis) {
	for collection := range db.Indexes {
		if err := c.Invalidate(ctx, collection); err != nil {
			log.Printf("[cache] invalidate %s: %v", collection, err)
		}
	}
}

// newAPIClient returns a client for the configured server and a printer on the
// command's output.
func newAPIClient(cmd *cobra.Command) (*client.Client, *observability.Printer, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	c, err := client.New(cfg.APIURL, client.DefaultOptions())
	if err != nil {
		return nil, nil, err
	}
	if cfg.Verbose {
		log.Printf("Using API at %s", cfg.APIURL)
	}
	return c, observability.NewPrinter(cmd.OutOrStdout()), nil
}
