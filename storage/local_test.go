package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLocalStore(t *testing.T) *LocalStore {
	t.Helper()

	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	return store
}

func TestLocalStore_PutAndGet(t *testing.T) {
	ctx := context.Background()
	store := setupLocalStore(t)

	key := "imports/set-1/cases.csv"
	err := store.Put(ctx, key, strings.NewReader("Test Case ID,Module\nTC-001,Checkout\n"))
	require.NoError(t, err)

	reader, err := store.Get(ctx, key)
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Contains(t, string(content), "TC-001")
}

func TestLocalStore_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	store := setupLocalStore(t)

	require.NoError(t, store.Put(ctx, "a.csv", strings.NewReader("first")))
	require.NoError(t, store.Put(ctx, "a.csv", strings.NewReader("second")))

	reader, err := store.Get(ctx, "a.csv")
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
}

func TestLocalStore_GetMissing(t *testing.T) {
	store := setupLocalStore(t)

	_, err := store.Get(context.Background(), "missing.csv")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestLocalStore_Remove(t *testing.T) {
	ctx := context.Background()
	store := setupLocalStore(t)

	require.NoError(t, store.Put(ctx, "a.csv", strings.NewReader("data")))
	require.NoError(t, store.Remove(ctx, "a.csv"))

	exists, err := store.Exists(ctx, "a.csv")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, store.Remove(ctx, "a.csv"), ErrBlobNotFound)
}

func TestLocalStore_Exists(t *testing.T) {
	ctx := context.Background()
	store := setupLocalStore(t)

	exists, err := store.Exists(ctx, "a.csv")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Put(ctx, "a.csv", strings.NewReader("data")))

	exists, err = store.Exists(ctx, "a.csv")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocalStore_URL(t *testing.T) {
	ctx := context.Background()
	store := setupLocalStore(t)

	require.NoError(t, store.Put(ctx, "imports/a.csv", strings.NewReader("data")))

	url, err := store.URL(ctx, "imports/a.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file://"))
	assert.Contains(t, url, "imports/a.csv")

	_, err = store.URL(ctx, "missing.csv")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestLocalStore_RejectsBadKeys(t *testing.T) {
	ctx := context.Background()
	store := setupLocalStore(t)

	for _, key := range []string{"", "../escape.csv", "a/../../escape.csv", "/etc/passwd"} {
		err := store.Put(ctx, key, strings.NewReader("data"))
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestImportArchiveKey(t *testing.T) {
	setID := uuid.New()

	key := ImportArchiveKey(setID, "cases.csv")
	assert.True(t, strings.HasPrefix(key, "imports/"+setID.String()+"/"))
	assert.True(t, strings.HasSuffix(key, "-cases.csv"))

	fallback := ImportArchiveKey(setID, "  ")
	assert.True(t, strings.HasSuffix(fallback, "-import.csv"))
}
