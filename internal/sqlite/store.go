// Package sqlite implements the SQLite snapshot store for the Helix kernel.
// A snapshot persists an object's identity, helix state, path→visibility map
// (never payload closures), lineage nodes, and relation records. Loading
// re-binds thunks from host-supplied factories keyed by path.
// Implements: prd004-snapshot-store; docs/ARCHITECTURE § Snapshot Store.
package sqlite

import (
	"database/sql"
	_ "embed"
	"errors"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/helix/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// dbFileName is the snapshot database file inside DataDir.
const dbFileName = "helix.db"

// Store lifecycle and load errors (prd004-snapshot-store R2, R5).
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrObjectNotFound  = errors.New("object not found")
	ErrThunkUnbound    = errors.New("no factory for token path")
)

// Store persists kernel snapshots in a SQLite database. The store is not
// attached until Attach is called with a Config.
type Store struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
}

// NewStore creates a new snapshot store instance.
func NewStore() *Store {
	return &Store{}
}

// Attach opens the snapshot database under config.DataDir, creating the
// directory and schema as needed. Existing snapshots are preserved across
// attaches. Returns ErrAlreadyAttached if called while attached.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return err
	}

	s.db = db
	s.config = config
	s.attached = true
	return nil
}

// Detach closes the database. Idempotent; after Detach all operations return
// ErrStoreDetached.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
		s.db = nil
	}
	s.attached = false
	return nil
}
