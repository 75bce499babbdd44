package types

import (
	"errors"
	"time"
)

// Lineage operation names recorded by the kernel.
const (
	OpRegister         = "register"
	OpInvoke           = "invoke"
	OpCycleUp          = "cycle_up"
	OpCycleDown        = "cycle_down"
	OpReset            = "reset"
	OpMaterialize      = "materialize"
	OpMaterializeError = "materialize_error"
	OpBind             = "bind"
)

// Lineage errors (prd002-lineage-log R4).
var (
	ErrNodeNotFound  = errors.New("lineage node not found")
	ErrUnknownParent = errors.New("lineage parent does not exist")
)

// LineageNode is one immutable entry in the provenance graph. Nodes form a
// DAG: binding merges two independent lineages, so a node may have several
// parents, but a parent must already exist when its child is appended, which
// makes cycles structurally impossible.
// Implements: prd002-lineage-log R1.
type LineageNode struct {
	NodeID    string    `json:"node_id"`
	Operation string    `json:"operation"`
	CreatedAt time.Time `json:"created_at"`
	ParentIDs []string  `json:"parent_ids"`
	Summary   string    `json:"summary"`
}
