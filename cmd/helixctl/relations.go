// Relations command for the helixctl CLI.
// Implements: prd007-helixctl-cli R7.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var relationsCmd = &cobra.Command{
	Use:   "relations [object-id]",
	Short: "List persisted relation records, optionally for one object",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachStore()
		if err != nil {
			fail(exitSysError, "relations", err)
		}
		defer store.Detach()

		objectID := ""
		if len(args) == 1 {
			objectID = args[0]
		}
		records, err := store.LoadRelations(objectID)
		if err != nil {
			fail(exitSysError, "relations", err)
		}

		if flagJSON {
			return printJSON(records)
		}
		for _, r := range records {
			fmt.Printf("%s  %s -> %s  kind=%s weight=%.2f\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"),
				r.SourceID, r.TargetID, r.Kind, r.Weight)
		}
		return nil
	},
}
