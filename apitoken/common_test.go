package apitoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/regresshub/regresshub/logger"
	"github.com/regresshub/regresshub/testutil"
	"gorm.io/gorm"
)

// setupTestStore creates a test database and API token store for testing.
func setupTestStore(t *testing.T) (*gorm.DB, *MySQLStore) {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &APIToken{})

	return db, NewMySQLStore(db, logger.NewTestLogger())
}

// createToken builds a token with default values and a fresh hash.
func createToken(t *testing.T, userID uuid.UUID, name string) (*APIToken, string) {
	t.Helper()

	raw, hash, err := GenerateToken()
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	return &APIToken{
		UserID:    userID,
		Name:      name,
		TokenHash: hash,
		Scope:     ScopeReadWrite,
		ExpiresAt: time.Now().Add(DefaultExpiry),
		IsActive:  true,
	}, raw
}
