package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"interview-backend/internal/shared/telemetry"
)

func newCleanupCacheCmd(open coreOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup-cache",
		Short: "Delete cached generations older than the cache TTL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := open(ctx)
			if err != nil {
				return fmt.Errorf("open stores: %w", err)
			}
			defer app.Close()

			start := time.Now()
			deleted, err := app.Cache.Cleanup(ctx, start)
			if err != nil {
				return fmt.Errorf("cleanup cache: %w", err)
			}
			telemetry.Info("cache.cleanup", map[string]any{
				"deleted":     deleted,
				"source":      "cli",
				"duration_ms": time.Since(start).Milliseconds(),
			})
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d stale cache entries\n", deleted)
			return nil
		},
	}
}
