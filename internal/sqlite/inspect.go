package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/helix/pkg/types"
)

// TokenInfo is the persisted face of a token: path and visibility, no
// payload.
type TokenInfo struct {
	Path       string `json:"path"`
	Visibility []int  `json:"visibility"`
}

// ObjectSummary describes a persisted object without re-binding thunks.
// Inspection tooling uses it; hosts that want a live object use LoadObject.
type ObjectSummary struct {
	ObjectID string           `json:"object_id"`
	Levels   int              `json:"levels"`
	State    types.HelixState `json:"state"`
	Vector   []float64        `json:"vector"`
	Tokens   []TokenInfo      `json:"tokens"`
}

// Summarize reads an object's snapshot rows without constructing a live
// object.
func (s *Store) Summarize(id string) (*ObjectSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, ErrStoreDetached
	}

	row := s.db.QueryRow(
		"SELECT levels, cycle, level, vector FROM objects WHERE object_id = ?", id)
	sum := &ObjectSummary{ObjectID: id}
	var vectorJSON string
	err := row.Scan(&sum.Levels, &sum.State.Cycle, &sum.State.Level, &vectorJSON)
	if err == sql.ErrNoRows {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning object: %w", err)
	}
	if err := json.Unmarshal([]byte(vectorJSON), &sum.Vector); err != nil {
		return nil, fmt.Errorf("parsing vector: %w", err)
	}

	rows, err := s.db.Query(
		"SELECT path, visibility FROM tokens WHERE object_id = ? ORDER BY path", id)
	if err != nil {
		return nil, fmt.Errorf("loading tokens: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var info TokenInfo
		var visJSON string
		if err := rows.Scan(&info.Path, &visJSON); err != nil {
			return nil, fmt.Errorf("scanning token: %w", err)
		}
		if err := json.Unmarshal([]byte(visJSON), &info.Visibility); err != nil {
			return nil, fmt.Errorf("parsing visibility for %s: %w", info.Path, err)
		}
		sum.Tokens = append(sum.Tokens, info)
	}
	return sum, rows.Err()
}

// Lineage returns an object's persisted lineage nodes in append order,
// without constructing a live log.
func (s *Store) Lineage(id string) ([]types.LineageNode, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, "", ErrStoreDetached
	}

	row := s.db.QueryRow("SELECT current_node FROM objects WHERE object_id = ?", id)
	var currentNode string
	err := row.Scan(&currentNode)
	if err == sql.ErrNoRows {
		return nil, "", ErrObjectNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("scanning object: %w", err)
	}

	log, err := s.loadLineage(id, currentNode)
	if err != nil {
		return nil, "", err
	}
	return log.Nodes(), currentNode, nil
}
