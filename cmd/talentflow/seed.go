package main

import (
	"context"
	"fmt"

	"github.com/jonathan/talentflow/internal/observability"
	"github.com/jonathan/talentflow/internal/seed"
	"github.com/spf13/cobra"
)

var (
	seedCandidates int
	seedValue      uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate an empty store with demo jobs, candidates and assessments",
	Long: `Writes 25 jobs, a pool of candidates with stage histories, and three assessments
directly to the store. A store that already holds jobs is left untouched.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedCandidates, "candidates", 0, "Number of candidates to create (default 1000)")
	seedCmd.Flags().Uint64Var(&seedValue, "seed", 0, "Random seed for reproducible data (0 picks one)")
	addStoreFlags(seedCmd)
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("candidates") {
		cfg.SeedCandidates = seedCandidates
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	res, err := seed.Run(ctx, store, seed.Options{Candidates: cfg.SeedCandidates, Seed: seedValue})
	if err != nil {
		return fmt.Errorf("failed to seed store: %w", err)
	}

	// Seeding writes straight to the store, so cached pages are stale.
	if !res.Skipped {
		redisCache := openCache(ctx, cfg)
		invalidateAll(ctx, redisCache)
		_ = redisCache.Close()
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintSummary("SEED", res)
	return nil
}
