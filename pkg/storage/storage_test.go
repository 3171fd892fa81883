package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStorage(t *testing.T, store Storage) {
	ctx := context.Background()

	t.Run("read missing", func(t *testing.T) {
		_, err := store.Read(ctx, "ledger/missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("write and read", func(t *testing.T) {
		body := []byte("account record")
		require.NoError(t, store.Write(ctx, "ledger/accounts/aa", body, nil))

		read, err := store.Read(ctx, "ledger/accounts/aa")
		require.NoError(t, err)
		assert.Equal(t, body, read)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.Write(ctx, "ledger/accounts/bb", []byte("v1"), nil))
		require.NoError(t, store.Write(ctx, "ledger/accounts/bb", []byte("v2"), nil))

		read, err := store.Read(ctx, "ledger/accounts/bb")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), read)
	})

	t.Run("list", func(t *testing.T) {
		require.NoError(t, store.Write(ctx, "ledger/accounts/cc", []byte("v"), nil))

		keys, err := store.List(ctx, "ledger/accounts")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(keys), 3)
		assert.Contains(t, keys, "ledger/accounts/aa")
		assert.Contains(t, keys, "ledger/accounts/cc")
	})

	t.Run("search", func(t *testing.T) {
		objects, err := store.Search(ctx, map[string]string{"path": "ledger/accounts"})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(objects), 3)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, store.Remove(ctx, "ledger/accounts/aa"))

		_, err := store.Read(ctx, "ledger/accounts/aa")
		assert.ErrorIs(t, err, ErrNotFound)

		assert.ErrorIs(t, store.Remove(ctx, "ledger/accounts/aa"), ErrNotFound)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx, map[string]string{"path": "ledger/accounts"}))

		keys, err := store.List(ctx, "ledger/accounts")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})
}

func TestFilesystemStorage(t *testing.T) {
	store := NewFilesystemStorage(NewConfig("standalone", t.TempDir()))
	testStorage(t, store)
}

func TestBoltStorage(t *testing.T) {
	store, err := NewBoltStorage(NewConfig("vault", t.TempDir()))
	require.NoError(t, err)
	defer store.Close()

	testStorage(t, store)
}
