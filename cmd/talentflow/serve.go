package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/talentflow/internal/config"
	"github.com/jonathan/talentflow/internal/events"
	"github.com/jonathan/talentflow/internal/seed"
	"github.com/jonathan/talentflow/internal/server"
	"github.com/jonathan/talentflow/internal/server/ratelimit"
	"github.com/jonathan/talentflow/internal/service"
	"github.com/spf13/cobra"
)

var (
	servePort   int
	serveSeed   bool
	storeDriver string
	storeDSN    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the jobs, candidates and assessments API
and a server-sent event stream of changes.

Every request is delayed by a random latency and writes fail at the configured
error rates, so clients can be exercised against a realistic backend.`,
	RunE: runServe,
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&storeDriver, "store", "", "Store driver: memory, sqlite or postgres (default sqlite)")
	cmd.Flags().StringVar(&storeDSN, "dsn", "", "SQLite file path or PostgreSQL URL")
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "Seed the store with demo data if it is empty")
	addStoreFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func simulatorConfig(cfg config.Config) service.SimulatorConfig {
	sc := service.SimulatorConfig{
		MinDelay: time.Duration(cfg.MinDelay),
		MaxDelay: time.Duration(cfg.MaxDelay),
	}
	if cfg.ErrorRate != nil {
		sc.ErrorRate = *cfg.ErrorRate
	}
	if cfg.ReorderErrorRate != nil {
		sc.ReorderErrorRate = *cfg.ReorderErrorRate
	}
	return sc
}

func rateLimitConfig(cfg config.Config) *ratelimit.Config {
	if cfg.RateLimit == nil || !*cfg.RateLimit {
		return nil
	}
	rl := ratelimit.DefaultConfig()
	rl.Allow = ratelimit.ParseClients(cfg.RateLimitAllow)
	return rl
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		cfg.SeedOnStart = serveSeed
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	redisCache := openCache(ctx, cfg)
	defer func() { _ = redisCache.Close() }()

	if cfg.SeedOnStart {
		res, err := seed.Run(ctx, store, seed.Options{Candidates: cfg.SeedCandidates})
		if err != nil {
			_ = store.Close()
			return fmt.Errorf("failed to seed store: %w", err)
		}
		if !res.Skipped {
			invalidateAll(ctx, redisCache)
		}
		log.Printf("[seed] %s", res)
	}

	hub := events.NewHub()
	svc := service.New(store,
		service.WithSimulator(service.NewSimulator(simulatorConfig(cfg), nil)),
		service.WithCache(redisCache),
		service.WithPublisher(hub),
	)

	if cfg.Verbose {
		sc := simulatorConfig(cfg)
		log.Printf("Store: %s, latency %s-%s, error rate %.2f, reorder error rate %.2f",
			cfg.StoreDriver, sc.MinDelay, sc.MaxDelay, sc.ErrorRate, sc.ReorderErrorRate)
	}

	srv := server.New(svc, hub, server.Config{
		Port:      cfg.Port,
		RateLimit: rateLimitConfig(cfg),
	})
	return srv.Start()
}
