package substrate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/helix/pkg/types"
)

// PathDelimiter separates segments in a token path.
const PathDelimiter = "."

// Materialize projects the token store through the current state and returns
// the view. A standalone projection appends its own lineage node; transitions
// materialize as part of their own node.
func (o *Object) Materialize() types.MaterializedView {
	o.mu.Lock()
	defer o.mu.Unlock()
	node := o.appendLocked(types.OpMaterialize,
		fmt.Sprintf("(%d,%d)", o.state.Cycle, o.state.Level))
	return o.materializeLocked(node.NodeID)
}

// materializeLocked rebuilds the view for the current state. Every visible
// token's thunk is evaluated exactly once per call, in sorted path order. A
// failing thunk excludes only its own token: the error is appended to lineage
// as a materialize_error node parented on the triggering operation, and the
// rest of the view survives. Caller must hold the write lock.
func (o *Object) materializeLocked(parentID string) types.MaterializedView {
	view := make(types.MaterializedView)
	for _, path := range o.sortedPathsLocked() {
		tok := o.tokens[path]
		if !tok.VisibleAt(o.state.Level) {
			continue
		}
		value, err := evalThunk(tok.Thunk)
		tok.Stats.Evaluations++
		tok.Stats.LastEval = time.Now()
		if err != nil {
			tok.Stats.Errors++
			o.log.Append(types.OpMaterializeError,
				fmt.Sprintf("%s: %v", path, err), parentID)
			continue
		}
		insertValue(view, parsePath(path), value)
	}
	return view
}

// evalThunk runs a thunk, converting a panic into an error so one bad token
// never aborts the rest of a projection.
func evalThunk(thunk types.Thunk) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("thunk panic: %v", r)
		}
	}()
	return thunk()
}

// segment is one parsed piece of a token path. An indexed segment
// ("name[idx]") addresses a sequence container instead of a mapping.
type segment struct {
	key     string
	index   int
	indexed bool
}

// parsePath splits a path on the delimiter and recognizes array-index syntax
// in each segment. A segment whose bracket suffix does not parse as a
// non-negative integer is treated as a literal key.
func parsePath(path string) []segment {
	parts := strings.Split(path, PathDelimiter)
	segs := make([]segment, len(parts))
	for i, part := range parts {
		segs[i] = parseSegment(part)
	}
	return segs
}

func parseSegment(part string) segment {
	open := strings.LastIndex(part, "[")
	if open <= 0 || !strings.HasSuffix(part, "]") {
		return segment{key: part}
	}
	idx, err := strconv.Atoi(part[open+1 : len(part)-1])
	if err != nil || idx < 0 {
		return segment{key: part}
	}
	return segment{key: part[:open], index: idx, indexed: true}
}

// insertValue places value into the nested view at the parsed path, creating
// mapping and sequence containers as needed. Sequence containers grow with
// nil padding up to the addressed index. Conflicting container shapes are
// resolved by the later token in sorted path order, which keeps the outcome
// deterministic.
func insertValue(root types.MaterializedView, segs []segment, value any) {
	cur := map[string]any(root)
	for i, s := range segs {
		last := i == len(segs)-1

		if !s.indexed {
			if last {
				cur[s.key] = value
				return
			}
			next, ok := cur[s.key].(map[string]any)
			if !ok {
				next = make(map[string]any)
				cur[s.key] = next
			}
			cur = next
			continue
		}

		arr, _ := cur[s.key].([]any)
		for len(arr) <= s.index {
			arr = append(arr, nil)
		}
		if last {
			arr[s.index] = value
			cur[s.key] = arr
			return
		}
		next, ok := arr[s.index].(map[string]any)
		if !ok {
			next = make(map[string]any)
			arr[s.index] = next
		}
		cur[s.key] = arr
		cur = next
	}
}
