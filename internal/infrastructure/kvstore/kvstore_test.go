package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "a", `[{"id":"1"}]`))
	v, ok, err := kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, v)

	require.NoError(t, kv.Set(ctx, "a", "second"))
	v, _, err = kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "second", v)

	require.NoError(t, kv.Delete(ctx, "a"))
	_, ok, err = kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, kv.Delete(ctx, "never-set"))
}

func TestMemory(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	kv := Open(context.Background(), filepath.Join(t.TempDir(), "store.db"), zerolog.Nop())
	require.IsType(t, &SQL{}, kv)
	defer kv.Close()
	exerciseKV(t, kv)
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	ctx := context.Background()

	first := Open(ctx, path, zerolog.Nop())
	require.NoError(t, first.Set(ctx, "current", "abc"))
	require.NoError(t, first.Close())

	second := Open(ctx, path, zerolog.Nop())
	defer second.Close()
	v, ok, err := second.Get(ctx, "current")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
}

func TestOpenMemoryDSN(t *testing.T) {
	assert.IsType(t, &Memory{}, Open(context.Background(), "memory", zerolog.Nop()))
}

func TestOpenFallsBackToUnavailable(t *testing.T) {
	// A regular file where the parent directory should be makes the medium unusable.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	kv := Open(context.Background(), filepath.Join(blocker, "store.db"), zerolog.Nop())
	assert.IsType(t, Unavailable{}, kv)

	_, _, err := kv.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, kv.Set(context.Background(), "k", "v"), ErrUnavailable)
	assert.NoError(t, kv.Close())
}
