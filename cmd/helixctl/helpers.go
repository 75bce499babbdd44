// Shared helpers for helixctl commands.
// Implements: prd007-helixctl-cli R3, R8.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mesh-intelligence/helix/internal/sqlite"
	"github.com/mesh-intelligence/helix/pkg/types"
)

// attachStore resolves the data directory, creates a snapshot store, and
// attaches it. The caller must defer store.Detach().
func attachStore() (*sqlite.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Backend: types.BackendSQLite,
		DataDir: dataDir,
	}

	store := sqlite.NewStore()
	if err := store.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}

	return store, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fail prints the error and exits with the given code.
func fail(code int, context string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", context, err)
	os.Exit(code)
}
