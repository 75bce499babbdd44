// Package relation composes two substrate objects into a derived third
// object via elementwise multiplicative binding. Multiplication is the
// scale-invariant choice: uniformly scaling either input's vector scales the
// product proportionally instead of shifting it by a constant, which matters
// when "scale" has no canonical zero.
// Implements: prd003-relations; docs/ARCHITECTURE § Relation Binding.
package relation

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/helix/pkg/cache"
	"github.com/mesh-intelligence/helix/pkg/lineage"
	"github.com/mesh-intelligence/helix/pkg/substrate"
	"github.com/mesh-intelligence/helix/pkg/types"
)

// Binding is the result of composing two objects: the derived object and the
// directional record of the relation that produced it.
type Binding struct {
	Object *substrate.Object
	Record types.RelationRecord
}

// RelationalDistance is the magnitude of the derived vector scaled by the
// relation weight. It is an ordering and ranking signal only: it is not a
// metric and does not satisfy the triangle inequality, so it must never be
// used for exact nearest-neighbor math.
func (b Binding) RelationalDistance() float64 {
	var sum float64
	for _, v := range b.Object.Vector() {
		sum += v * v
	}
	return math.Sqrt(sum) * b.Record.Weight
}

// Binder builds derived objects and keeps the records it emits. A shared
// bounded cache, when configured, memoizes product vectors across repeated
// binds of the same pair.
type Binder struct {
	mu      sync.Mutex
	cache   *cache.Bounded
	weights map[string]float64
	records []types.RelationRecord
}

// Option configures a Binder.
type Option func(*Binder)

// WithCache memoizes product vectors in the given shared cache.
func WithCache(c *cache.Bounded) Option {
	return func(b *Binder) { b.cache = c }
}

// WithKindWeights overrides the default weight of 1.0 per relation kind.
func WithKindWeights(weights map[string]float64) Option {
	return func(b *Binder) { b.weights = weights }
}

// NewBinder creates a Binder.
func NewBinder(opts ...Option) *Binder {
	b := &Binder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// newRecordID generates a UUID v7 record id, falling back to v4 if v7 fails.
func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Bind composes a and b into a derived object whose value vector is the
// elementwise product of theirs. The derived object carries a fresh identity
// and a lineage log merged from both parents plus one bind node with two
// parents, which is what makes the provenance graph a DAG rather than a
// tree. Vectors of different lengths fail with ErrVectorMismatch.
func (bd *Binder) Bind(a, b *substrate.Object, kind string) (*Binding, error) {
	product, err := bd.productVector(a, b, kind)
	if err != nil {
		return nil, err
	}

	log := lineage.New()
	log.MergeWith(a.Log())
	log.MergeWith(b.Log())

	var parents []string
	if cur := a.Log().CurrentID(); cur != "" {
		parents = append(parents, cur)
	}
	if cur := b.Log().CurrentID(); cur != "" && cur != a.Log().CurrentID() {
		parents = append(parents, cur)
	}

	derived, err := substrate.New(substrate.Config{
		Levels: a.Levels(),
		Vector: product,
		Log:    log,
	})
	if err != nil {
		return nil, err
	}

	if _, err := log.Append(types.OpBind,
		fmt.Sprintf("%s x %s (%s) -> %s", a.ID(), b.ID(), kind, derived.ID()),
		parents...); err != nil {
		return nil, err
	}

	record := types.RelationRecord{
		RelationID: newRecordID(),
		SourceID:   a.ID(),
		TargetID:   b.ID(),
		Kind:       kind,
		Weight:     bd.kindWeight(kind),
		CreatedAt:  time.Now(),
	}
	bd.mu.Lock()
	bd.records = append(bd.records, record)
	bd.mu.Unlock()

	return &Binding{Object: derived, Record: record}, nil
}

// Merge folds Bind over the objects left-to-right. Merging a singleton list
// returns its element unchanged; merging an empty list fails with
// ErrEmptyMerge, never a silent default.
func (bd *Binder) Merge(objects []*substrate.Object, kind string) (*substrate.Object, error) {
	switch len(objects) {
	case 0:
		return nil, types.ErrEmptyMerge
	case 1:
		return objects[0], nil
	}
	current := objects[0]
	for _, next := range objects[1:] {
		binding, err := bd.Bind(current, next, kind)
		if err != nil {
			return nil, err
		}
		current = binding.Object
	}
	return current, nil
}

// Records returns copies of every relation record this binder has emitted.
func (bd *Binder) Records() []types.RelationRecord {
	bd.mu.Lock()
	defer bd.mu.Unlock()
	return append([]types.RelationRecord(nil), bd.records...)
}

// AddRecords appends restored records (snapshot load).
func (bd *Binder) AddRecords(records []types.RelationRecord) {
	bd.mu.Lock()
	defer bd.mu.Unlock()
	bd.records = append(bd.records, records...)
}

func (bd *Binder) kindWeight(kind string) float64 {
	if w, ok := bd.weights[kind]; ok {
		return w
	}
	return 1.0
}

// productVector computes the elementwise product of the two objects'
// vectors, memoized through the shared cache when one is configured. Vectors
// are immutable once read, so caching cannot change results.
func (bd *Binder) productVector(a, b *substrate.Object, kind string) ([]float64, error) {
	compute := func() (any, error) {
		return multiply(a.Vector(), b.Vector())
	}
	if bd.cache == nil {
		v, err := compute()
		if err != nil {
			return nil, err
		}
		return v.([]float64), nil
	}
	key := a.ID() + "|" + b.ID() + "|" + kind
	v, err := bd.cache.GetOrCompute(key, compute)
	if err != nil {
		return nil, err
	}
	return v.([]float64), nil
}

// multiply returns the elementwise product z = x*y per axis.
func multiply(x, y []float64) ([]float64, error) {
	if len(x) != len(y) {
		return nil, types.ErrVectorMismatch
	}
	z := make([]float64, len(x))
	for i := range x {
		z[i] = x[i] * y[i]
	}
	return z, nil
}
