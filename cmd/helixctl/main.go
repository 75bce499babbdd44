// Package main provides the helixctl CLI, an inspection tool over Helix
// kernel snapshots.
// Implements: prd007-helixctl-cli; docs/ARCHITECTURE § CLI.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}
