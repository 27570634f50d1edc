package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <query>...",
	Short: "Resolve a title to TMDB identities",
	Long: `Resolve a title to TMDB identities, ranked by name similarity.

Examples:
  recgo resolve "The Matrix"
  recgo resolve leon the professional`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().Int("limit", 10, "Max matches shown")
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.Join(args, " ")

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	matches, err := a.meta.Resolve(ctx, query)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	if jsonOutput {
		return printJSON(matches)
	}

	if len(matches) == 0 {
		fmt.Printf("No matches for %q\n", query)
		return nil
	}

	fmt.Printf("Matches for %q:\n\n", query)
	fmt.Printf("  %-12s │ %-40s │ %4s │ %5s │ %s\n", "REF", "TITLE", "YEAR", "SCORE", "CONFIDENCE")
	for _, m := range matches {
		fmt.Printf("  %-12s │ %-40s │ %4d │ %.3f │ %s\n",
			m.Identity.String(), truncateTitle(m.Title, 40), m.Year, m.Score, m.Confidence)
	}
	return nil
}
