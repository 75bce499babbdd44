package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/helix/pkg/types"
)

func testConfig(t *testing.T) types.Config {
	t.Helper()
	return types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}
}

func attachedStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	require.NoError(t, store.Attach(testConfig(t)))
	t.Cleanup(func() { store.Detach() })
	return store
}

func TestAttachLifecycle(t *testing.T) {
	store := NewStore()
	cfg := testConfig(t)

	require.NoError(t, store.Attach(cfg))
	assert.ErrorIs(t, store.Attach(cfg), ErrAlreadyAttached)

	require.NoError(t, store.Detach())
	require.NoError(t, store.Detach(), "detach is idempotent")

	_, err := store.ListObjects()
	assert.ErrorIs(t, err, ErrStoreDetached)
}

func TestAttachRejectsInvalidConfig(t *testing.T) {
	store := NewStore()
	err := store.Attach(types.Config{Backend: "postgres"})
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

func TestAttachCreatesDataDir(t *testing.T) {
	store := NewStore()
	cfg := types.Config{
		Backend: types.BackendSQLite,
		DataDir: filepath.Join(t.TempDir(), "nested", "data"),
	}
	require.NoError(t, store.Attach(cfg))
	defer store.Detach()

	ids, err := store.ListObjects()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSnapshotsSurviveReattach(t *testing.T) {
	cfg := testConfig(t)

	store := NewStore()
	require.NoError(t, store.Attach(cfg))
	obj := buildSampleObject(t)
	require.NoError(t, store.SaveObject(obj))
	require.NoError(t, store.Detach())

	second := NewStore()
	require.NoError(t, second.Attach(cfg))
	defer second.Detach()

	ids, err := second.ListObjects()
	require.NoError(t, err)
	assert.Equal(t, []string{obj.ID()}, ids)
}
