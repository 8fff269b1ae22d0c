package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orca-dev/orca-install/internal/platform"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List supported platforms",
	Long:  `List the os/arch pairs release archives are published for.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Supported platforms:")
		for _, p := range platform.Supported() {
			fmt.Printf("  %s\n", p)
		}

		if detected, err := platform.Detect(); err == nil {
			fmt.Printf("\nCurrent platform: %s\n", detected)
		} else {
			fmt.Printf("\nCurrent platform: unsupported (%v)\n", err)
		}
		return nil
	},
}
