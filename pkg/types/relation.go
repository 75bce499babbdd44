package types

import (
	"errors"
	"time"
)

// Relation errors (prd003-relations R5).
var (
	ErrEmptyMerge     = errors.New("merge requires at least one object")
	ErrVectorMismatch = errors.New("vector lengths differ")
)

// RelationRecord is a directional edge between two object identities,
// produced by binding. It references both ids without owning either.
// Implements: prd003-relations R1.
type RelationRecord struct {
	RelationID string    `json:"relation_id"`
	SourceID   string    `json:"source_id"`
	TargetID   string    `json:"target_id"`
	Kind       string    `json:"kind"`
	Weight     float64   `json:"weight"`
	CreatedAt  time.Time `json:"created_at"`
}
