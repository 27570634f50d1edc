package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/recgo/internal/metadata"
	"github.com/vmunix/recgo/internal/recommend"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [flags] <title|movie:ID|tv:ID>...",
	Short: "Ranked recommendations for one or more seed titles",
	Long: `Ranked recommendations for one or more seed titles.

Seeds are titles (resolved against TMDB) or explicit references
like movie:603 or tv:1396.

Examples:
  recgo recommend "Breaking Bad"
  recgo recommend movie:603 "Blade Runner" --limit 10
  recgo recommend tv:1396 --expand --exclude-genre Reality`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.Flags().Int("limit", 0, "Max results (capped at 20)")
	recommendCmd.Flags().Bool("expand", false, "Widen the pool one hop through top candidates")
	recommendCmd.Flags().Bool("fresh", false, "Bypass the cache")
	recommendCmd.Flags().Bool("explain", false, "Show per-component score breakdown")
	recommendCmd.Flags().Float64("min-rating", 0, "Minimum vote average (0-10)")
	recommendCmd.Flags().Int("year-from", 0, "Earliest year")
	recommendCmd.Flags().Int("year-to", 0, "Latest year")
	recommendCmd.Flags().StringSlice("exclude-genre", nil, "Genres to drop (repeatable)")
	recommendCmd.Flags().StringSlice("rating", nil, "Allowed content ratings, e.g. PG-13,TV-MA (repeatable)")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	seeds := make([]metadata.Identity, 0, len(args))
	for _, arg := range args {
		id, err := resolveSeed(ctx, a, arg)
		if err != nil {
			return err
		}
		seeds = append(seeds, id)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	expand, _ := cmd.Flags().GetBool("expand")
	fresh, _ := cmd.Flags().GetBool("fresh")
	explain, _ := cmd.Flags().GetBool("explain")
	minRating, _ := cmd.Flags().GetFloat64("min-rating")
	yearFrom, _ := cmd.Flags().GetInt("year-from")
	yearTo, _ := cmd.Flags().GetInt("year-to")
	excludeGenres, _ := cmd.Flags().GetStringSlice("exclude-genre")
	ratings, _ := cmd.Flags().GetStringSlice("rating")

	result, err := a.agg.Recommend(ctx, seeds, recommend.Options{
		Limit:     limit,
		SkipCache: fresh,
		Expand:    expand,
		Filters: recommend.Filters{
			MinRating:      minRating,
			YearFrom:       yearFrom,
			YearTo:         yearTo,
			ExcludedGenres: excludeGenres,
			ContentRatings: ratings,
		},
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(result)
	}

	printRecommendations(result, explain)
	return nil
}

func printRecommendations(r *recommend.Result, explain bool) {
	seedTitles := make([]string, 0, len(r.Seeds))
	for _, s := range r.Seeds {
		seedTitles = append(seedTitles, s.Title)
	}
	fmt.Printf("Recommendations for %s:\n\n", strings.Join(seedTitles, ", "))

	if len(r.Candidates) == 0 {
		fmt.Println("No candidates found")
		return
	}

	fmt.Printf("  # │ %-40s │ %4s │ %5s │ %s\n", "TITLE", "YEAR", "SCORE", "WHY")
	fmt.Println("────┼──────────────────────────────────────────┼──────┼───────┼──────────────")

	for i, c := range r.Candidates {
		fmt.Printf(" %2d │ %-40s │ %4d │ %.3f │ %s\n",
			i+1, truncateTitle(c.Metadata.Title, 40), c.Metadata.Year(), c.Score, whyLine(c))

		if len(c.Patterns) > 0 {
			fmt.Printf("    │ patterns: %s\n", strings.Join(c.Patterns, ", "))
		}
		if explain {
			fmt.Printf("    │ %s\n", breakdownLine(c.Breakdown))
		}
	}
}

func whyLine(c recommend.Candidate) string {
	parts := []string{string(c.Source)}
	if c.MatchCount > 1 {
		parts = append(parts, fmt.Sprintf("%d paths", c.MatchCount))
	}
	if c.ViaTitle != "" {
		parts = append(parts, "via "+c.ViaTitle)
	}
	return strings.Join(parts, ", ")
}

func breakdownLine(b recommend.Breakdown) string {
	component := func(name string, v float64) string {
		if v < 0 {
			return name + "=n/a"
		}
		return fmt.Sprintf("%s=%.2f", name, v)
	}
	return strings.Join([]string{
		component("source", b.Source),
		component("genre", b.Genre),
		component("keyword", b.Keyword),
		component("pattern", b.Pattern),
		component("rating", b.Rating),
		component("popularity", b.Popularity),
		component("year", b.Year),
	}, " ")
}
