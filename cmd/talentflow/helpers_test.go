package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/talentflow/internal/config"
	"github.com/jonathan/talentflow/internal/db"
	"github.com/jonathan/talentflow/internal/seed"
	"github.com/jonathan/talentflow/internal/server"
	"github.com/jonathan/talentflow/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// newTestAPI serves a seeded in-memory store with no latency or failures.
func newTestAPI(t *testing.T) (string, *service.Service) {
	t.Helper()
	store := db.NewMemory()
	_, err := seed.Run(context.Background(), store, seed.Options{Candidates: 30, Seed: 5})
	require.NoError(t, err)

	svc := service.New(store, service.WithSimulator(service.Instant()))
	ts := httptest.NewServer(server.New(svc, nil, server.Config{}).Handler())
	t.Cleanup(ts.Close)
	return ts.URL, svc
}

// resetFlags restores every flag to its default so one test's flags do not
// leak into the next Execute.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Setenv("TALENTFLOW_API_URL", "")
	t.Setenv("REDIS_ADDR", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func configWithRateLimit(enabled *bool) config.Config {
	return config.Config{RateLimit: enabled, RateLimitAllow: "127.0.0.1, ::1"}
}
