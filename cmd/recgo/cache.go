package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/recgo/internal/metadata"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the metadata cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired cache entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.sqlite == nil {
			fmt.Println("Nothing to prune: the redis backend expires entries on its own")
			return nil
		}
		removed, err := a.sqlite.Prune(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Pruned %d expired entries\n", removed)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cache entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.redis != nil {
			if err := a.redis.Clear(ctx); err != nil {
				return err
			}
			fmt.Println("Cache cleared")
			return nil
		}
		removed, err := a.sqlite.Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Cleared %d entries\n", removed)
		return nil
	},
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate <movie:ID|tv:ID>...",
	Short: "Remove the cached metadata and results for specific titles",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ids := make([]metadata.Identity, 0, len(args))
		for _, arg := range args {
			id, ok := parseIdentity(arg)
			if !ok {
				return fmt.Errorf("invalid reference %q, want movie:ID or tv:ID", arg)
			}
			ids = append(ids, id)
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		for _, id := range ids {
			if err := a.meta.Invalidate(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Invalidated %s\n", id.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
}
