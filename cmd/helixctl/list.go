// List command for the helixctl CLI.
// Implements: prd007-helixctl-cli R4.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted object ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachStore()
		if err != nil {
			fail(exitSysError, "list", err)
		}
		defer store.Detach()

		ids, err := store.ListObjects()
		if err != nil {
			fail(exitSysError, "list", err)
		}

		if flagJSON {
			return printJSON(ids)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}
