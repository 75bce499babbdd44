// Version command for the helixctl CLI.
// Implements: prd007-helixctl-cli R2.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/helix/pkg/helix"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the helixctl version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("helixctl", helix.Version)
	},
}
