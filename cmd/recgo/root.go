package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "recgo",
	Short: "TMDB-backed recommendation engine",
	Long: `recgo - TMDB-backed recommendation engine

Aggregates, scores and ranks recommendations for movies and TV shows
from one or more seed titles.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: discover)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("recgo {{.Version}}\n")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncateTitle shortens a title to n runes for table output. Counting
// runes, not bytes, so multi-byte titles are never split mid-character.
func truncateTitle(title string, n int) string {
	runes := []rune(title)
	if len(runes) <= n {
		return title
	}
	return string(runes[:n-3]) + "..."
}
