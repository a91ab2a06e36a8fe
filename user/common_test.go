package user

import (
	"testing"

	"github.com/regresshub/regresshub/logger"
	"github.com/regresshub/regresshub/testutil"
	"gorm.io/gorm"
)

// setupTestStore creates a test database and user store for testing.
func setupTestStore(t *testing.T) (*gorm.DB, *MySQLStore) {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &User{})

	return db, NewMySQLStore(db, logger.NewTestLogger())
}

// createTestUser builds a user with default values and a hashed password.
func createTestUser(t *testing.T, email, name string) *User {
	t.Helper()

	u := &User{
		Email:    email,
		Name:     name,
		IsActive: true,
	}
	if err := u.SetPassword("correct-horse-battery"); err != nil {
		t.Fatalf("failed to set password: %v", err)
	}

	return u
}
