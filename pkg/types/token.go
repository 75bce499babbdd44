package types

import (
	"errors"
	"time"
)

// Token registration errors (prd001-helix-core R4.5).
var (
	ErrEmptyPath = errors.New("token path must not be empty")
	ErrNilThunk  = errors.New("token thunk must not be nil")
)

// Thunk is a lazily-evaluated token payload. It runs only when a projection
// needs the value, and may fail. Thunks are not serializable; snapshots keep
// the path→visibility map and re-bind thunks from host factories on load.
type Thunk func() (any, error)

// AccessStats counts evaluations of a token's thunk. Updated under the owning
// object's lock.
type AccessStats struct {
	Evaluations int       `json:"evaluations"`
	Errors      int       `json:"errors"`
	LastEval    time.Time `json:"last_eval"`
}

// Token is a named, lazily-evaluated fact tagged with the levels at which it
// is visible. Registered explicitly; the payload is replaced only by
// re-registration at the same path.
// Implements: prd001-helix-core R4.
type Token struct {
	Path       string      `json:"path"`
	Visibility []int       `json:"visibility"`
	Thunk      Thunk       `json:"-"`
	Stats      AccessStats `json:"stats"`
}

// VisibleAt reports whether the token is visible at the given level.
func (t *Token) VisibleAt(level int) bool {
	for _, v := range t.Visibility {
		if v == level {
			return true
		}
	}
	return false
}

// Measurement is the three-way result of a single-token probe. Found and
// Visible distinguish "absent" from "present-but-not-visible" from
// "present-and-visible" without any error handling on the caller's side.
// Value is set only when Visible is true.
type Measurement struct {
	Found   bool `json:"found"`
	Visible bool `json:"visible"`
	Value   any  `json:"value,omitempty"`
}

// MaterializedView is a point-in-time projection of a token store through a
// helix state: a nested path→value structure restricted to tokens visible at
// the state's level. Purely derived; rebuilt fully on each transition and
// never persisted.
type MaterializedView map[string]any
