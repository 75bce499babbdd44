package substrate

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/helix/pkg/types"
)

// Measure probes a single token under the current state. The three-way
// result distinguishes "absent" from "present-but-not-visible" from
// "present-and-visible"; the first two are expected conditions, not errors,
// so callers never need error handling to detect them. The error return is
// reserved for a visible token whose thunk fails.
// Implements: prd001-helix-core R5.
func (o *Object) Measure(path string) (types.Measurement, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	tok, ok := o.tokens[path]
	if !ok {
		return types.Measurement{}, nil
	}
	if !tok.VisibleAt(o.state.Level) {
		return types.Measurement{Found: true}, nil
	}

	value, err := evalThunk(tok.Thunk)
	tok.Stats.Evaluations++
	tok.Stats.LastEval = time.Now()
	if err != nil {
		tok.Stats.Errors++
		return types.Measurement{}, fmt.Errorf("measuring %s: %w", path, err)
	}
	return types.Measurement{Found: true, Visible: true, Value: value}, nil
}
