package regressionset

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatform_IsValid(t *testing.T) {
	for _, platform := range []Platform{PlatformWeb, PlatformIOS, PlatformAndroid, PlatformTV} {
		assert.True(t, platform.IsValid())
	}
	assert.False(t, Platform("Desktop").IsValid())
	assert.False(t, Platform("").IsValid())
}

func TestMySQLStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a regression set", func(t *testing.T) {
		_, store := setupTestStore(t)

		set := createSet(uuid.New(), "Release 2.4 regression", PlatformWeb)
		err := store.Create(ctx, set)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, set.ID)
	})

	t.Run("rejects invalid fields", func(t *testing.T) {
		_, store := setupTestStore(t)

		err := store.Create(ctx, createSet(uuid.New(), "", PlatformWeb))
		assert.ErrorIs(t, err, ErrInvalidName)

		err = store.Create(ctx, createSet(uuid.New(), "No platform", Platform("Desktop")))
		assert.ErrorIs(t, err, ErrInvalidPlatform)

		err = store.Create(ctx, createSet(uuid.Nil, "No owner", PlatformWeb))
		assert.ErrorIs(t, err, ErrInvalidCreatedBy)
	})
}

func TestMySQLStore_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the set", func(t *testing.T) {
		_, store := setupTestStore(t)

		set := createSet(uuid.New(), "Release regression", PlatformIOS)
		require.NoError(t, store.Create(ctx, set))

		got, err := store.GetByID(ctx, set.ID)
		require.NoError(t, err)
		assert.Equal(t, set.Name, got.Name)
		assert.Equal(t, PlatformIOS, got.Platform)
	})

	t.Run("returns not found for unknown set", func(t *testing.T) {
		_, store := setupTestStore(t)

		_, err := store.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrRegressionSetNotFound)
	})
}

func TestMySQLStore_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("applies setters", func(t *testing.T) {
		_, store := setupTestStore(t)

		set := createSet(uuid.New(), "Old name", PlatformWeb)
		require.NoError(t, store.Create(ctx, set))

		err := store.Update(ctx, set.ID,
			SetName("New name"),
			SetDescription("Covers the checkout flows"),
			SetPlatform(PlatformAndroid))
		require.NoError(t, err)

		got, err := store.GetByID(ctx, set.ID)
		require.NoError(t, err)
		assert.Equal(t, "New name", got.Name)
		assert.Equal(t, "Covers the checkout flows", got.Description)
		assert.Equal(t, PlatformAndroid, got.Platform)
	})

	t.Run("rejects invalid setters", func(t *testing.T) {
		_, store := setupTestStore(t)

		set := createSet(uuid.New(), "Name", PlatformWeb)
		require.NoError(t, store.Create(ctx, set))

		assert.ErrorIs(t, store.Update(ctx, set.ID, SetName("")), ErrInvalidName)
		assert.ErrorIs(t, store.Update(ctx, set.ID, SetPlatform("Desktop")), ErrInvalidPlatform)
	})
}

func TestMySQLStore_Delete(t *testing.T) {
	ctx := context.Background()

	_, store := setupTestStore(t)

	set := createSet(uuid.New(), "Doomed", PlatformWeb)
	require.NoError(t, store.Create(ctx, set))

	require.NoError(t, store.Delete(ctx, set.ID))

	_, err := store.GetByID(ctx, set.ID)
	assert.ErrorIs(t, err, ErrRegressionSetNotFound)

	assert.ErrorIs(t, store.Delete(ctx, set.ID), ErrRegressionSetNotFound)
}

func TestMySQLStore_ListByOwner(t *testing.T) {
	ctx := context.Background()

	_, store := setupTestStore(t)

	ownerID := uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Create(ctx, createSet(ownerID, fmt.Sprintf("Web set %d", i), PlatformWeb)))
	}
	require.NoError(t, store.Create(ctx, createSet(ownerID, "TV set", PlatformTV)))
	require.NoError(t, store.Create(ctx, createSet(uuid.New(), "Other owner", PlatformWeb)))

	t.Run("lists only the owner's sets", func(t *testing.T) {
		sets, err := store.ListByOwner(ctx, ownerID, "", 10, 0)
		require.NoError(t, err)
		assert.Len(t, sets, 4)

		total, err := store.CountByOwner(ctx, ownerID, "")
		require.NoError(t, err)
		assert.EqualValues(t, 4, total)
	})

	t.Run("filters by platform", func(t *testing.T) {
		sets, err := store.ListByOwner(ctx, ownerID, PlatformTV, 10, 0)
		require.NoError(t, err)
		require.Len(t, sets, 1)
		assert.Equal(t, "TV set", sets[0].Name)

		total, err := store.CountByOwner(ctx, ownerID, PlatformTV)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("pages results", func(t *testing.T) {
		sets, err := store.ListByOwner(ctx, ownerID, "", 3, 3)
		require.NoError(t, err)
		assert.Len(t, sets, 1)
	})
}
