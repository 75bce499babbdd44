// Package types defines the core value types and standard error types for
// the Helix kernel: identities, helix coordinates, tokens, lineage nodes,
// relation records, and the snapshot Config.
// Implements: prd001-helix-core (HelixState, Token, Config, error types);
//
//	docs/ARCHITECTURE § Data Model.
package types
