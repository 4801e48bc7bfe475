package main

import (
	"fmt"
	"path/filepath"

	"github.com/spboyer/knapsack/internal/cache"
	"github.com/spboyer/knapsack/internal/utils"
	"github.com/spf13/cobra"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the sample set cache",
		Long: `Manage the sample set cache.

The cache stores solver sample sets so repeated solves of the same model with
the same engine and parameters skip the solver. Entries are keyed by the
encoded model, the engine name and the engine parameters.`,
	}

	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheClearCommand() *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the sample set cache",
		Long: `Clear all cached sample sets.

The next solve will call the solver for every problem. The directory is only
cleared when it holds nothing but cache entries.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := cacheDir
			if dir == "" {
				cfg, err := loadProjectConfig()
				if err != nil {
					return err
				}
				dir = utils.ResolvePath(cfg.Cache.Dir, cfg.Dir)
			}

			// Resolve to absolute path
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving cache directory: %w", err)
			}

			if err := cache.New(absDir).Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", absDir) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Cache directory to clear (default from .knapsack.yaml, else .knapsack-cache)")

	return cmd
}
