package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "embeddings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	vec := []float32{0.1, -0.2, 0.3, 0.4}
	store.Set(ctx, "gh-1", vec, "text-embedding-3-small", "fp-a")

	got := store.Get(ctx, "gh-1", "fp-a")
	require.NotNil(t, got)
	assert.Equal(t, vec, got)
}

func TestFingerprintMismatchIsMiss(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	store.Set(ctx, "gh-1", []float32{1, 2, 3}, "model-a", "fp-a")

	assert.Nil(t, store.Get(ctx, "gh-1", "fp-b"), "stale fingerprint must be a miss")
	assert.Nil(t, store.Get(ctx, "gh-2", "fp-a"), "unknown id must be a miss")
}

func TestSetOverwrites(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	store.Set(ctx, "gh-1", []float32{1, 1}, "model-a", "fp-a")
	store.Set(ctx, "gh-1", []float32{2, 2}, "model-b", "fp-b")

	// Old fingerprint no longer matches after the overwrite.
	assert.Nil(t, store.Get(ctx, "gh-1", "fp-a"))
	assert.Equal(t, []float32{2, 2}, store.Get(ctx, "gh-1", "fp-b"))
}

func TestSetIgnoresEmptyInput(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	store.Set(ctx, "", []float32{1}, "model-a", "fp-a")
	store.Set(ctx, "gh-1", nil, "model-a", "fp-a")

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalEntries)
}

func TestCorruptRecordIsMiss(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	store.Set(ctx, "gh-1", []float32{1, 2}, "model-a", "fp-a")

	// Corrupt the stored vector directly.
	_, err := store.db.ExecContext(ctx,
		"UPDATE embeddings SET vector = ? WHERE work_item_id = ?", []byte("not json"), "gh-1")
	require.NoError(t, err)

	assert.Nil(t, store.Get(ctx, "gh-1", "fp-a"))
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	store.Set(ctx, "gh-1", []float32{1}, "model-a", "fp-a")
	require.NoError(t, store.Invalidate(ctx, "gh-1"))
	assert.Nil(t, store.Get(ctx, "gh-1", "fp-a"))

	// Invalidating a missing id is a no-op.
	require.NoError(t, store.Invalidate(ctx, "gh-404"))
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	store.Set(ctx, "gh-1", []float32{1}, "model-a", "fp-1")
	store.Set(ctx, "gh-2", []float32{2}, "model-b", "fp-2")

	require.NoError(t, store.Clear(ctx))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalEntries)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalEntries)
	assert.Equal(t, 0, stats.ModelCount)
	assert.Nil(t, stats.OldestCreatedAt)
	assert.Nil(t, stats.NewestCreatedAt)

	store.Set(ctx, "gh-1", []float32{1}, "model-a", "fp-1")
	store.Set(ctx, "gh-2", []float32{2}, "model-a", "fp-2")
	store.Set(ctx, "gh-3", []float32{3}, "model-b", "fp-3")

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, 2, stats.ModelCount)
	assert.NotNil(t, stats.OldestCreatedAt)
	assert.NotNil(t, stats.NewestCreatedAt)
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "embeddings.db")

	store, err := Open(path)
	require.NoError(t, err)
	store.Set(ctx, "gh-1", []float32{0.5, 0.25}, "model-a", "fp-a")
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, []float32{0.5, 0.25}, reopened.Get(ctx, "gh-1", "fp-a"))
}
