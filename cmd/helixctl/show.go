// Show command for the helixctl CLI.
// Implements: prd007-helixctl-cli R5.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/helix/internal/sqlite"
)

var showCmd = &cobra.Command{
	Use:   "show <object-id>",
	Short: "Show a persisted object's state and token visibility",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachStore()
		if err != nil {
			fail(exitSysError, "show", err)
		}
		defer store.Detach()

		sum, err := store.Summarize(args[0])
		if errors.Is(err, sqlite.ErrObjectNotFound) {
			fail(exitUserError, "show", err)
		}
		if err != nil {
			fail(exitSysError, "show", err)
		}

		if flagJSON {
			return printJSON(sum)
		}
		fmt.Println("object:", sum.ObjectID)
		fmt.Printf("state:  cycle=%d level=%d (of %d)\n",
			sum.State.Cycle, sum.State.Level, sum.Levels)
		fmt.Println("vector:", sum.Vector)
		for _, tok := range sum.Tokens {
			fmt.Printf("token:  %s visible@%v\n", tok.Path, tok.Visibility)
		}
		return nil
	},
}
