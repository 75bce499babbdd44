package sqlite

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/helix/pkg/types"
)

// SaveRelations upserts relation records. Records reference object ids
// without owning either side, so saves are independent of object snapshots.
func (s *Store) SaveRelations(records []types.RelationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return ErrStoreDetached
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning relations save: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		_, err := tx.Exec(`
			INSERT INTO relations (relation_id, source_id, target_id, kind, weight, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(relation_id) DO UPDATE SET
				source_id = excluded.source_id,
				target_id = excluded.target_id,
				kind = excluded.kind,
				weight = excluded.weight`,
			r.RelationID, r.SourceID, r.TargetID, r.Kind, r.Weight,
			r.CreatedAt.Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("upserting relation %s: %w", r.RelationID, err)
		}
	}
	return tx.Commit()
}

// LoadRelations returns all relation records touching the given object id as
// source or target; an empty id returns every record.
func (s *Store) LoadRelations(objectID string) ([]types.RelationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, ErrStoreDetached
	}

	query := "SELECT relation_id, source_id, target_id, kind, weight, created_at FROM relations"
	args := []any{}
	if objectID != "" {
		query += " WHERE source_id = ? OR target_id = ?"
		args = append(args, objectID, objectID)
	}
	query += " ORDER BY created_at"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading relations: %w", err)
	}
	defer rows.Close()

	var records []types.RelationRecord
	for rows.Next() {
		var r types.RelationRecord
		var createdAt string
		if err := rows.Scan(&r.RelationID, &r.SourceID, &r.TargetID, &r.Kind, &r.Weight, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning relation: %w", err)
		}
		r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing relation created_at: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
