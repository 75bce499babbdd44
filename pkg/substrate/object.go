// Package substrate implements the Helix substrate object: a stable identity,
// a store of lazily-evaluated tokens tagged with visibility levels, a helix
// coordinate governing current visibility, and the transition and
// materialization machinery over them. One object owns exactly one helix
// state, one token store, and one lineage log.
//
// Domain variants do not subclass anything: they parameterize New with a
// capability record of token builders and an optional vector transform.
// Implements: prd001-helix-core; docs/ARCHITECTURE § Substrate Object.
package substrate

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/helix/pkg/lineage"
	"github.com/mesh-intelligence/helix/pkg/types"
)

// TokenBuilder registers tokens on a freshly constructed object. Builders run
// in order during New; the first error aborts construction.
type TokenBuilder func(*Object) error

// Transform reshapes the object's value vector at construction time. Domain
// variants supply one instead of subclassing the object type.
type Transform func([]float64) []float64

// Config parameterizes New. The zero value yields an object with a generated
// identity, DefaultLevels levels, an empty vector, and a fresh lineage log.
type Config struct {
	// ID is the object's stable identity. Generated (UUID v7) when empty.
	ID string

	// Levels is the visibility level count L; levels run [0, L-1].
	// Defaults to types.DefaultLevels.
	Levels int

	// Vector is the object's value vector, consumed by relation binding.
	Vector []float64

	// InitialState overrides the starting coordinate (cycle 0, level 0).
	InitialState *types.HelixState

	// Builders register the object's initial tokens.
	Builders []TokenBuilder

	// Transform, when set, is applied to Vector once during construction.
	Transform Transform

	// Log substitutes a pre-populated lineage log (snapshot restore, bind).
	Log *lineage.Log
}

// Object is a substrate object. Mutating operations are guarded by a single
// per-object lock; exported methods acquire it exactly once and delegate to
// unexported helpers that assume it, so no call path re-enters the lock.
type Object struct {
	mu     sync.RWMutex
	id     string
	levels int
	vector []float64
	state  types.HelixState
	tokens map[string]*types.Token
	log    *lineage.Log
}

// newIdentity generates a UUID v7 identity, falling back to v4 if v7 fails.
func newIdentity() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// New constructs a substrate object from the given capability record.
func New(cfg Config) (*Object, error) {
	levels := cfg.Levels
	if levels == 0 {
		levels = types.DefaultLevels
	}
	if levels < 1 {
		return nil, types.ErrInvalidLevels
	}

	id := cfg.ID
	if id == "" {
		id = newIdentity()
	}

	vector := append([]float64(nil), cfg.Vector...)
	if cfg.Transform != nil {
		vector = cfg.Transform(vector)
	}

	state := types.HelixState{}
	if cfg.InitialState != nil {
		state = *cfg.InitialState
		if !state.InRange(levels) {
			return nil, types.ErrLevelOutOfRange
		}
	}

	log := cfg.Log
	if log == nil {
		log = lineage.New()
	}

	o := &Object{
		id:     id,
		levels: levels,
		vector: vector,
		state:  state,
		tokens: make(map[string]*types.Token),
		log:    log,
	}
	for _, build := range cfg.Builders {
		if err := build(o); err != nil {
			return nil, fmt.Errorf("token builder: %w", err)
		}
	}
	return o, nil
}

// ID returns the object's stable identity.
func (o *Object) ID() string { return o.id }

// Levels returns the object's visibility level count.
func (o *Object) Levels() int { return o.levels }

// Log returns the object's lineage log.
func (o *Object) Log() *lineage.Log { return o.log }

// Vector returns a copy of the object's value vector.
func (o *Object) Vector() []float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]float64(nil), o.vector...)
}

// State returns the current helix coordinate.
func (o *Object) State() types.HelixState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// RegisterToken inserts or overwrites the token at path without evaluating
// its thunk. Re-registration replaces the token wholesale, access stats
// included. Visibility levels outside [0, L-1] are rejected.
func (o *Object) RegisterToken(path string, visibility []int, thunk types.Thunk) error {
	if path == "" {
		return types.ErrEmptyPath
	}
	if thunk == nil {
		return types.ErrNilThunk
	}
	vis, err := normalizeVisibility(visibility, o.levels)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.tokens[path] = &types.Token{Path: path, Visibility: vis, Thunk: thunk}
	o.appendLocked(types.OpRegister, fmt.Sprintf("%s visible@%v", path, vis))
	return nil
}

// RebindToken installs a token without appending a lineage node. Used when
// loading a snapshot: the registration already happened in a previous
// process, and the restored log carries its node.
func (o *Object) RebindToken(path string, visibility []int, thunk types.Thunk) error {
	if path == "" {
		return types.ErrEmptyPath
	}
	if thunk == nil {
		return types.ErrNilThunk
	}
	vis, err := normalizeVisibility(visibility, o.levels)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.tokens[path] = &types.Token{Path: path, Visibility: vis, Thunk: thunk}
	return nil
}

// Tokens returns copies of all tokens sorted by path.
func (o *Object) Tokens() []types.Token {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]types.Token, 0, len(o.tokens))
	for _, path := range o.sortedPathsLocked() {
		out = append(out, *o.tokens[path])
	}
	return out
}

// normalizeVisibility copies, sorts, and dedupes a visibility set, rejecting
// levels outside [0, levels-1].
func normalizeVisibility(visibility []int, levels int) ([]int, error) {
	seen := make(map[int]bool, len(visibility))
	out := make([]int, 0, len(visibility))
	for _, v := range visibility {
		if v < 0 || v >= levels {
			return nil, types.ErrLevelOutOfRange
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Ints(out)
	return out, nil
}

// sortedPathsLocked returns token paths in sorted order. Materialization
// walks tokens in this order, which is what makes identical inputs produce
// structurally identical views. Caller must hold the lock.
func (o *Object) sortedPathsLocked() []string {
	paths := make([]string, 0, len(o.tokens))
	for p := range o.tokens {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// appendLocked appends one lineage node parented on the log's current node.
// Caller must hold the object lock.
func (o *Object) appendLocked(operation, summary string) *types.LineageNode {
	var parents []string
	if cur := o.log.CurrentID(); cur != "" {
		parents = append(parents, cur)
	}
	node, err := o.log.Append(operation, summary, parents...)
	if err != nil {
		// The parent is the log's own current node, so this only happens
		// on a corrupted restore; fall back to a rootless node.
		node, _ = o.log.Append(operation, summary)
	}
	return node
}
