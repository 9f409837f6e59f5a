// Package main provides the talentflow command: the hiring API server plus
// client commands for working the job board, the candidate pipeline and
// assessments from a terminal.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	apiURL     string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "talentflow",
	Short: "TalentFlow hiring pipeline server and CLI",
	Long: `TalentFlow manages job postings, a candidate pipeline and per-job assessments.

"talentflow serve" runs the HTTP API. The jobs, candidates and assessment commands
talk to a running server at --api-url.

Configuration can be loaded from a JSON file using --config. Environment variables
override the file, and command-line flags override both.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Server base URL (default http://localhost:8080)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
