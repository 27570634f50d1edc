package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/recgo/internal/pattern"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <title|movie:ID|tv:ID>",
	Short: "Thematic pattern labels for a title",
	Long: `Thematic pattern labels for a title, derived from its overview,
tagline, reviews and translated overviews.

Examples:
  recgo classify "Fight Club"
  recgo classify tv:1396`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := resolveSeed(ctx, a, args[0])
	if err != nil {
		return err
	}

	meta, err := a.meta.Get(ctx, id)
	if err != nil {
		return err
	}
	labels := pattern.Classify(meta.Text())

	if jsonOutput {
		return printJSON(map[string]any{
			"identity": meta.Identity,
			"title":    meta.Title,
			"patterns": labels,
		})
	}

	if len(labels) == 0 {
		fmt.Printf("%s (%d): no patterns detected\n", meta.Title, meta.Year())
		return nil
	}
	fmt.Printf("%s (%d): %s\n", meta.Title, meta.Year(), strings.Join(labels, ", "))
	return nil
}
