package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/helix/pkg/cache"
	"github.com/mesh-intelligence/helix/pkg/substrate"
	"github.com/mesh-intelligence/helix/pkg/types"
)

func newVectorObject(t *testing.T, vector []float64) *substrate.Object {
	t.Helper()
	obj, err := substrate.New(substrate.Config{Vector: vector})
	require.NoError(t, err)
	return obj
}

func TestBindElementwiseProduct(t *testing.T) {
	// bind(A=[2,3], B=[4,5]) -> [8,15]; distance = |[8,15]| * 1 ≈ 17.0.
	a := newVectorObject(t, []float64{2, 3})
	b := newVectorObject(t, []float64{4, 5})

	binder := NewBinder()
	binding, err := binder.Bind(a, b, "pairing")
	require.NoError(t, err)

	assert.Equal(t, []float64{8, 15}, binding.Object.Vector())
	assert.InDelta(t, 17.0, binding.RelationalDistance(), 0.01)

	rec := binding.Record
	assert.Equal(t, a.ID(), rec.SourceID)
	assert.Equal(t, b.ID(), rec.TargetID)
	assert.Equal(t, "pairing", rec.Kind)
	assert.Equal(t, 1.0, rec.Weight)
	assert.NotEmpty(t, rec.RelationID)
}

func TestBindVectorMismatch(t *testing.T) {
	a := newVectorObject(t, []float64{1, 2})
	b := newVectorObject(t, []float64{1, 2, 3})

	_, err := NewBinder().Bind(a, b, "pairing")
	assert.ErrorIs(t, err, types.ErrVectorMismatch)
}

func TestBindScaleInvariance(t *testing.T) {
	a := newVectorObject(t, []float64{2, 3})
	scaled := newVectorObject(t, []float64{20, 30})
	b := newVectorObject(t, []float64{4, 5})

	binder := NewBinder()
	base, err := binder.Bind(a, b, "pairing")
	require.NoError(t, err)
	big, err := binder.Bind(scaled, b, "pairing")
	require.NoError(t, err)

	// Scaling one input by 10 scales every axis of the product by 10.
	assert.InDelta(t, base.RelationalDistance()*10, big.RelationalDistance(), 1e-9)
}

func TestBindAssociativity(t *testing.T) {
	a := newVectorObject(t, []float64{2, 3})
	b := newVectorObject(t, []float64{4, 5})
	c := newVectorObject(t, []float64{0.5, 2})

	binder := NewBinder()
	ab, err := binder.Bind(a, b, "chain")
	require.NoError(t, err)
	abc, err := binder.Bind(ab.Object, c, "chain")
	require.NoError(t, err)

	bc, err := binder.Bind(b, c, "chain")
	require.NoError(t, err)
	abc2, err := binder.Bind(a, bc.Object, "chain")
	require.NoError(t, err)

	left := abc.Object.Vector()
	right := abc2.Object.Vector()
	require.Len(t, right, len(left))
	for i := range left {
		assert.InDelta(t, left[i], right[i], 1e-9, "axis %d", i)
	}
}

func TestBindMergesLineage(t *testing.T) {
	a := newVectorObject(t, []float64{1})
	b := newVectorObject(t, []float64{2})
	require.NoError(t, a.RegisterToken("fact", []int{0}, func() (any, error) { return 1, nil }))
	_, err := b.Invoke(3)
	require.NoError(t, err)

	binding, err := NewBinder().Bind(a, b, "pairing")
	require.NoError(t, err)

	log := binding.Object.Log()
	// One register node from a, one invoke node from b, one bind node.
	assert.Equal(t, 3, log.Len())

	cur, err := log.Get(log.CurrentID())
	require.NoError(t, err)
	assert.Equal(t, types.OpBind, cur.Operation)
	assert.Len(t, cur.ParentIDs, 2, "bind node joins two lineages")

	// Trace from the bind node reaches every ancestor exactly once.
	trace, err := log.TraceBack("")
	require.NoError(t, err)
	assert.Len(t, trace, 3)
}

func TestMerge(t *testing.T) {
	a := newVectorObject(t, []float64{2, 2})
	b := newVectorObject(t, []float64{3, 3})
	c := newVectorObject(t, []float64{4, 4})

	binder := NewBinder()

	t.Run("empty list fails", func(t *testing.T) {
		_, err := binder.Merge(nil, "chain")
		assert.ErrorIs(t, err, types.ErrEmptyMerge)
	})

	t.Run("singleton returned unchanged", func(t *testing.T) {
		got, err := binder.Merge([]*substrate.Object{a}, "chain")
		require.NoError(t, err)
		assert.Same(t, a, got)
	})

	t.Run("left-to-right fold", func(t *testing.T) {
		got, err := binder.Merge([]*substrate.Object{a, b, c}, "chain")
		require.NoError(t, err)
		assert.Equal(t, []float64{24, 24}, got.Vector())
	})
}

func TestBindRecordsAccumulate(t *testing.T) {
	a := newVectorObject(t, []float64{1})
	b := newVectorObject(t, []float64{2})
	c := newVectorObject(t, []float64{3})

	binder := NewBinder()
	_, err := binder.Merge([]*substrate.Object{a, b, c}, "chain")
	require.NoError(t, err)

	records := binder.Records()
	assert.Len(t, records, 2, "one record per bind in the fold")
}

func TestKindWeights(t *testing.T) {
	a := newVectorObject(t, []float64{3})
	b := newVectorObject(t, []float64{4})

	binder := NewBinder(WithKindWeights(map[string]float64{"strong": 2.0}))
	binding, err := binder.Bind(a, b, "strong")
	require.NoError(t, err)

	assert.Equal(t, 2.0, binding.Record.Weight)
	assert.InDelta(t, 24.0, binding.RelationalDistance(), 1e-9)
}

func TestBindUsesSharedCache(t *testing.T) {
	a := newVectorObject(t, []float64{2, 3})
	b := newVectorObject(t, []float64{4, 5})

	shared, err := cache.New(8)
	require.NoError(t, err)
	binder := NewBinder(WithCache(shared))

	first, err := binder.Bind(a, b, "pairing")
	require.NoError(t, err)
	second, err := binder.Bind(a, b, "pairing")
	require.NoError(t, err)

	// Same product either way: the cache changes latency, never results.
	assert.Equal(t, first.Object.Vector(), second.Object.Vector())
	stats := shared.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, 1, stats.Items)
}
