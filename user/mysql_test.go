package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user", func(t *testing.T) {
		_, store := setupTestStore(t)

		u := createTestUser(t, "alice@example.com", "Alice")
		err := store.Create(ctx, u)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, u.ID)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, store := setupTestStore(t)

		require.NoError(t, store.Create(ctx, createTestUser(t, "alice@example.com", "Alice")))

		err := store.Create(ctx, createTestUser(t, "alice@example.com", "Another Alice"))
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		_, store := setupTestStore(t)

		err := store.Create(ctx, &User{Name: "No Email", PasswordHash: "x"})
		assert.ErrorIs(t, err, ErrInvalidEmail)

		err = store.Create(ctx, &User{Email: "x@example.com", PasswordHash: "x"})
		assert.ErrorIs(t, err, ErrInvalidName)
	})
}

func TestMySQLStore_GetByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("finds an active user", func(t *testing.T) {
		_, store := setupTestStore(t)

		u := createTestUser(t, "alice@example.com", "Alice")
		require.NoError(t, store.Create(ctx, u))

		got, err := store.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.True(t, got.CheckPassword("correct-horse-battery"))
		assert.False(t, got.CheckPassword("wrong"))
	})

	t.Run("returns not found for unknown email", func(t *testing.T) {
		_, store := setupTestStore(t)

		_, err := store.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestMySQLStore_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("updates name and password", func(t *testing.T) {
		_, store := setupTestStore(t)

		u := createTestUser(t, "alice@example.com", "Alice")
		require.NoError(t, store.Create(ctx, u))

		err := store.Update(ctx, u.ID, SetName("Alice B"), SetPassword("new-password-123"))
		require.NoError(t, err)

		got, err := store.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice B", got.Name)
		assert.True(t, got.CheckPassword("new-password-123"))
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, store := setupTestStore(t)

		u := createTestUser(t, "alice@example.com", "Alice")
		require.NoError(t, store.Create(ctx, u))

		err := store.Update(ctx, u.ID, SetPassword("short"))
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("returns not found for unknown user", func(t *testing.T) {
		_, store := setupTestStore(t)

		err := store.Update(ctx, uuid.New(), SetName("Nobody"))
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestMySQLStore_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivates the user", func(t *testing.T) {
		_, store := setupTestStore(t)

		u := createTestUser(t, "alice@example.com", "Alice")
		require.NoError(t, store.Create(ctx, u))

		require.NoError(t, store.Delete(ctx, u.ID))

		_, err := store.GetByID(ctx, u.ID)
		assert.ErrorIs(t, err, ErrUserNotFound)

		_, err = store.GetByEmail(ctx, "alice@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("returns not found for unknown user", func(t *testing.T) {
		_, store := setupTestStore(t)

		err := store.Delete(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestMySQLStore_List(t *testing.T) {
	ctx := context.Background()

	_, store := setupTestStore(t)

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		require.NoError(t, store.Create(ctx, createTestUser(t, email, "User")))
	}

	users, err := store.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = store.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
