package substrate

import (
	"fmt"

	"github.com/mesh-intelligence/helix/pkg/types"
)

// Transitions over the helix coordinate. Each transition is atomic under the
// object lock: the old state is captured, the new state computed, exactly one
// lineage node appended, and the view rebuilt, with no observable
// intermediate. Invalid transitions are reported synchronously and leave the
// state untouched.
// Implements: prd001-helix-core R3; docs/ARCHITECTURE § Transitions.

// Invoke moves to level k and returns the freshly materialized view.
// Out-of-range k fails with ErrLevelOutOfRange.
func (o *Object) Invoke(k int) (types.MaterializedView, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	next, err := o.state.Invoke(k, o.levels)
	if err != nil {
		return nil, err
	}
	return o.applyLocked(types.OpInvoke, next), nil
}

// CycleUp wraps from the top level into the next cycle. Fails with
// ErrInvalidTransition unless the current level is L-1.
func (o *Object) CycleUp() (types.MaterializedView, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	next, err := o.state.CycleUp(o.levels)
	if err != nil {
		return nil, err
	}
	return o.applyLocked(types.OpCycleUp, next), nil
}

// CycleDown wraps from the bottom level into the previous cycle. Fails with
// ErrInvalidTransition unless the current level is 0.
func (o *Object) CycleDown() (types.MaterializedView, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	next, err := o.state.CycleDown(o.levels)
	if err != nil {
		return nil, err
	}
	return o.applyLocked(types.OpCycleDown, next), nil
}

// Reset returns to level 0 of the current cycle. Always succeeds.
func (o *Object) Reset() types.MaterializedView {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.applyLocked(types.OpReset, o.state.Reset())
}

// applyLocked swaps in the new state, appends the transition node, and
// rebuilds the view. Caller must hold the write lock.
func (o *Object) applyLocked(operation string, next types.HelixState) types.MaterializedView {
	old := o.state
	o.state = next
	node := o.appendLocked(operation,
		fmt.Sprintf("(%d,%d) -> (%d,%d)", old.Cycle, old.Level, next.Cycle, next.Level))
	return o.materializeLocked(node.NodeID)
}
