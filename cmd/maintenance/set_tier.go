package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"interview-backend/internal/tier"
)

func newSetTierCmd(open coreOpener) *cobra.Command {
	var user, tierName string
	cmd := &cobra.Command{
		Use:   "set-tier",
		Short: "Record a user's subscription tier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, ok := tier.Parse(tierName)
			if !ok {
				return fmt.Errorf("unknown tier %q (want free, monthly, yearly or lifetime)", tierName)
			}
			key := userKeyFromFlag(user)
			if key == "" {
				return fmt.Errorf("--user must not be empty")
			}

			ctx := cmd.Context()
			app, err := open(ctx)
			if err != nil {
				return fmt.Errorf("open stores: %w", err)
			}
			defer app.Close()

			if err := app.Tiers.Set(ctx, key, t); err != nil {
				return fmt.Errorf("set tier: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", key, t)
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "user email or subject id")
	cmd.Flags().StringVarP(&tierName, "tier", "t", "", "free, monthly, yearly or lifetime")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("tier")
	return cmd
}

// userKeyFromFlag accepts either an email or a subject id.
func userKeyFromFlag(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "@") {
		return tier.UserKey("", raw)
	}
	return tier.UserKey(raw, "")
}
