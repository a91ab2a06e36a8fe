package apitoken

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	raw, hash, err := GenerateToken()
	require.NoError(t, err)

	assert.True(t, len(raw) > 10)
	assert.Equal(t, "rht_", raw[:4])
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, HashToken(raw))

	raw2, _, err := GenerateToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, raw2)
}

func TestNormalizeExpiry(t *testing.T) {
	assert.Equal(t, DefaultExpiry, NormalizeExpiry(0))
	assert.Equal(t, MinExpiry, NormalizeExpiry(time.Minute))
	assert.Equal(t, MaxExpiry, NormalizeExpiry(10*365*24*time.Hour))
	assert.Equal(t, 48*time.Hour, NormalizeExpiry(48*time.Hour))
}

func TestMySQLStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a token", func(t *testing.T) {
		_, store := setupTestStore(t)

		token, _ := createToken(t, uuid.New(), "ci token")
		err := store.Create(ctx, token)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, token.ID)
	})

	t.Run("enforces the per-user limit", func(t *testing.T) {
		_, store := setupTestStore(t)

		userID := uuid.New()
		for i := 0; i < MaxTokensPerUser; i++ {
			token, _ := createToken(t, userID, fmt.Sprintf("token %d", i))
			require.NoError(t, store.Create(ctx, token))
		}

		extra, _ := createToken(t, userID, "one too many")
		err := store.Create(ctx, extra)
		assert.ErrorIs(t, err, ErrMaxTokensReached)

		// A revoked token frees a slot.
		tokens, err := store.ListByUser(ctx, userID)
		require.NoError(t, err)
		require.NoError(t, store.Revoke(ctx, tokens[0].ID))

		require.NoError(t, store.Create(ctx, extra))
	})

	t.Run("rejects invalid tokens", func(t *testing.T) {
		_, store := setupTestStore(t)

		token, _ := createToken(t, uuid.New(), "")
		assert.ErrorIs(t, store.Create(ctx, token), ErrInvalidTokenName)

		token, _ = createToken(t, uuid.New(), "bad scope")
		token.Scope = "admin"
		assert.ErrorIs(t, store.Create(ctx, token), ErrInvalidScope)
	})
}

func TestMySQLStore_GetByTokenHash(t *testing.T) {
	ctx := context.Background()

	t.Run("authenticates by raw token hash", func(t *testing.T) {
		_, store := setupTestStore(t)

		userID := uuid.New()
		token, raw := createToken(t, userID, "ci token")
		require.NoError(t, store.Create(ctx, token))

		got, err := store.GetByTokenHash(ctx, HashToken(raw))
		require.NoError(t, err)
		assert.Equal(t, token.ID, got.ID)
		assert.Equal(t, userID, got.UserID)
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		_, store := setupTestStore(t)

		token, raw := createToken(t, uuid.New(), "expired")
		token.ExpiresAt = time.Now().Add(-time.Hour)
		require.NoError(t, store.Create(ctx, token))

		_, err := store.GetByTokenHash(ctx, HashToken(raw))
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("rejects revoked tokens", func(t *testing.T) {
		_, store := setupTestStore(t)

		token, raw := createToken(t, uuid.New(), "revoked")
		require.NoError(t, store.Create(ctx, token))
		require.NoError(t, store.Revoke(ctx, token.ID))

		_, err := store.GetByTokenHash(ctx, HashToken(raw))
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})
}

func TestMySQLStore_Revoke(t *testing.T) {
	ctx := context.Background()

	t.Run("revoking twice returns not found", func(t *testing.T) {
		_, store := setupTestStore(t)

		token, _ := createToken(t, uuid.New(), "ci token")
		require.NoError(t, store.Create(ctx, token))

		require.NoError(t, store.Revoke(ctx, token.ID))
		assert.ErrorIs(t, store.Revoke(ctx, token.ID), ErrTokenNotFound)
	})
}

func TestMySQLStore_ListByUser(t *testing.T) {
	ctx := context.Background()

	_, store := setupTestStore(t)

	userID := uuid.New()
	first, _ := createToken(t, userID, "first")
	require.NoError(t, store.Create(ctx, first))
	second, _ := createToken(t, userID, "second")
	require.NoError(t, store.Create(ctx, second))

	other, _ := createToken(t, uuid.New(), "other user")
	require.NoError(t, store.Create(ctx, other))

	tokens, err := store.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, tokens, 2)
	for _, token := range tokens {
		assert.Equal(t, userID, token.UserID)
	}
}
