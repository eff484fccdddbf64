package main

import (
	"context"

	"github.com/spf13/cobra"

	"interview-backend/internal/bootstrap"
	"interview-backend/internal/shared/config"
	"interview-backend/internal/shared/telemetry"
)

// coreOpener builds the storage-backed parts of the application.
type coreOpener func(ctx context.Context) (*bootstrap.App, error)

func openCore(ctx context.Context) (*bootstrap.App, error) {
	return bootstrap.BuildCore(ctx, config.Load())
}

func newRootCmd(open coreOpener) *cobra.Command {
	root := &cobra.Command{
		Use:          "maintenance",
		Short:        "Operational tasks for the interview question backend",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			jsonLogs, _ := cmd.Flags().GetBool("json")
			debug, _ := cmd.Flags().GetBool("debug")
			level := "info"
			if debug {
				level = "debug"
			}
			logger, err := telemetry.New(telemetry.Options{JSON: jsonLogs, Level: level})
			if err != nil {
				return err
			}
			telemetry.SetLogger(logger)
			return nil
		},
	}
	root.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	root.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")

	root.AddCommand(newCleanupCacheCmd(open), newSetTierCmd(open))
	return root
}
