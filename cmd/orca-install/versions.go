package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orca-dev/orca-install/internal/config"
	"github.com/orca-dev/orca-install/internal/version"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List available release tags",
	Long: `List release tags published for orca, newest first.

Set GITHUB_TOKEN to raise the API rate limit.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		cfg := config.Default()

		ctx, cancel := context.WithTimeout(cmd.Context(), config.GetAPITimeout())
		defer cancel()

		res := version.New()
		tags, err := res.ListVersions(ctx, cfg.OwnerRepo())
		if err != nil {
			return err
		}

		if len(tags) == 0 {
			fmt.Printf("No releases found for %s.\n", cfg.OwnerRepo())
			return nil
		}

		fmt.Printf("Available versions for %s (%d total):\n\n", cfg.OwnerRepo(), len(tags))
		for _, tag := range tags {
			fmt.Printf("  %s\n", tag)
		}
		return nil
	},
}
