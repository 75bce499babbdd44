// Trace command for the helixctl CLI.
// Implements: prd007-helixctl-cli R6.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/helix/internal/sqlite"
	"github.com/mesh-intelligence/helix/pkg/lineage"
)

var traceCmd = &cobra.Command{
	Use:   "trace <object-id>",
	Short: "Trace a persisted object's lineage from its newest node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachStore()
		if err != nil {
			fail(exitSysError, "trace", err)
		}
		defer store.Detach()

		nodes, currentNode, err := store.Lineage(args[0])
		if errors.Is(err, sqlite.ErrObjectNotFound) {
			fail(exitUserError, "trace", err)
		}
		if err != nil {
			fail(exitSysError, "trace", err)
		}

		log := lineage.Restore(nodes, currentNode)
		trace, err := log.TraceBack("")
		if err != nil {
			fail(exitSysError, "trace", err)
		}

		if flagJSON {
			return printJSON(trace)
		}
		for _, node := range trace {
			fmt.Printf("%s  %-18s %s\n",
				node.CreatedAt.Format("2006-01-02 15:04:05"),
				node.Operation, node.Summary)
		}
		return nil
	},
}
