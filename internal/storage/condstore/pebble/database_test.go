package pebble

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/go-cryptoconditions/internal/storage/condstore"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPebbleReadWriteDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	key, value := []byte("key"), []byte("value")
	require.NoError(t, db.Write(ctx, key, value))

	got, err := db.Read(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, got)

	require.NoError(t, db.Delete(ctx, key))
	_, err = db.Read(ctx, key)
	assert.ErrorIs(t, err, condstore.ErrNotFound)
}

func TestPebbleIterator(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, db.Write(ctx, []byte(k), []byte("v-"+k)))
	}

	it, err := db.Iterator(ctx, nil, nil)
	require.NoError(t, err)
	defer it.Close()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	require.NoError(t, it.Error())
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}
