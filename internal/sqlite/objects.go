package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/helix/pkg/lineage"
	"github.com/mesh-intelligence/helix/pkg/substrate"
	"github.com/mesh-intelligence/helix/pkg/types"
)

// SaveObject upserts a full snapshot of the object: its row, token
// visibility rows, and lineage rows. The write runs in one transaction.
func (s *Store) SaveObject(obj *substrate.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return ErrStoreDetached
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning snapshot: %w", err)
	}
	defer tx.Rollback()

	state := obj.State()
	vectorJSON, err := json.Marshal(obj.Vector())
	if err != nil {
		return fmt.Errorf("encoding vector: %w", err)
	}
	now := time.Now().Format(time.RFC3339)

	_, err = tx.Exec(`
		INSERT INTO objects (object_id, levels, cycle, level, vector, current_node, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(object_id) DO UPDATE SET
			levels = excluded.levels,
			cycle = excluded.cycle,
			level = excluded.level,
			vector = excluded.vector,
			current_node = excluded.current_node,
			updated_at = excluded.updated_at`,
		obj.ID(), obj.Levels(), state.Cycle, state.Level,
		string(vectorJSON), obj.Log().CurrentID(), now, now)
	if err != nil {
		return fmt.Errorf("upserting object: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM tokens WHERE object_id = ?", obj.ID()); err != nil {
		return fmt.Errorf("clearing tokens: %w", err)
	}
	for _, tok := range obj.Tokens() {
		visJSON, err := json.Marshal(tok.Visibility)
		if err != nil {
			return fmt.Errorf("encoding visibility for %s: %w", tok.Path, err)
		}
		_, err = tx.Exec(
			"INSERT INTO tokens (object_id, path, visibility) VALUES (?, ?, ?)",
			obj.ID(), tok.Path, string(visJSON))
		if err != nil {
			return fmt.Errorf("inserting token %s: %w", tok.Path, err)
		}
	}

	if _, err := tx.Exec("DELETE FROM lineage WHERE object_id = ?", obj.ID()); err != nil {
		return fmt.Errorf("clearing lineage: %w", err)
	}
	for i, node := range obj.Log().Nodes() {
		parentsJSON, err := json.Marshal(node.ParentIDs)
		if err != nil {
			return fmt.Errorf("encoding parents for %s: %w", node.NodeID, err)
		}
		_, err = tx.Exec(`
			INSERT INTO lineage (node_id, object_id, position, operation, created_at, parent_ids, summary)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			node.NodeID, obj.ID(), i, node.Operation,
			node.CreatedAt.Format(time.RFC3339Nano), string(parentsJSON), node.Summary)
		if err != nil {
			return fmt.Errorf("inserting lineage node %s: %w", node.NodeID, err)
		}
	}

	return tx.Commit()
}

// LoadObject rebuilds an object from its snapshot. Each persisted token path
// must have a factory; a missing one fails with ErrThunkUnbound, since a
// token without a payload closure cannot be materialized.
func (s *Store) LoadObject(id string, factories map[string]types.Thunk) (*substrate.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, ErrStoreDetached
	}

	row := s.db.QueryRow(
		"SELECT levels, cycle, level, vector, current_node FROM objects WHERE object_id = ?", id)
	var levels int
	var state types.HelixState
	var vectorJSON, currentNode string
	err := row.Scan(&levels, &state.Cycle, &state.Level, &vectorJSON, &currentNode)
	if err == sql.ErrNoRows {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning object: %w", err)
	}

	var vector []float64
	if err := json.Unmarshal([]byte(vectorJSON), &vector); err != nil {
		return nil, fmt.Errorf("parsing vector: %w", err)
	}

	log, err := s.loadLineage(id, currentNode)
	if err != nil {
		return nil, err
	}

	obj, err := substrate.New(substrate.Config{
		ID:           id,
		Levels:       levels,
		Vector:       vector,
		InitialState: &state,
		Log:          log,
	})
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		"SELECT path, visibility FROM tokens WHERE object_id = ? ORDER BY path", id)
	if err != nil {
		return nil, fmt.Errorf("loading tokens: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var path, visJSON string
		if err := rows.Scan(&path, &visJSON); err != nil {
			return nil, fmt.Errorf("scanning token: %w", err)
		}
		var visibility []int
		if err := json.Unmarshal([]byte(visJSON), &visibility); err != nil {
			return nil, fmt.Errorf("parsing visibility for %s: %w", path, err)
		}
		factory, ok := factories[path]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrThunkUnbound, path)
		}
		if err := obj.RebindToken(path, visibility, factory); err != nil {
			return nil, fmt.Errorf("re-binding %s: %w", path, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return obj, nil
}

// loadLineage rebuilds an object's log from its persisted rows in append
// order.
func (s *Store) loadLineage(objectID, currentNode string) (*lineage.Log, error) {
	rows, err := s.db.Query(`
		SELECT node_id, operation, created_at, parent_ids, summary
		FROM lineage WHERE object_id = ? ORDER BY position`, objectID)
	if err != nil {
		return nil, fmt.Errorf("loading lineage: %w", err)
	}
	defer rows.Close()

	var nodes []types.LineageNode
	for rows.Next() {
		var node types.LineageNode
		var createdAt, parentsJSON string
		if err := rows.Scan(&node.NodeID, &node.Operation, &createdAt, &parentsJSON, &node.Summary); err != nil {
			return nil, fmt.Errorf("scanning lineage node: %w", err)
		}
		node.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing lineage created_at: %w", err)
		}
		if err := json.Unmarshal([]byte(parentsJSON), &node.ParentIDs); err != nil {
			return nil, fmt.Errorf("parsing lineage parents: %w", err)
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lineage.Restore(nodes, currentNode), nil
}

// ListObjects returns the ids of all persisted objects, sorted.
func (s *Store) ListObjects() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, ErrStoreDetached
	}

	rows, err := s.db.Query("SELECT object_id FROM objects ORDER BY object_id")
	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning object id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
