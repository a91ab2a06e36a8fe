package regressionset

import (
	"testing"

	"github.com/google/uuid"
	"github.com/regresshub/regresshub/logger"
	"github.com/regresshub/regresshub/testutil"
	"gorm.io/gorm"
)

// setupTestStore creates a test database and regression set store for testing.
func setupTestStore(t *testing.T) (*gorm.DB, *MySQLStore) {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &RegressionSet{})

	return db, NewMySQLStore(db, logger.NewTestLogger())
}

// createSet builds a regression set with default values.
func createSet(ownerID uuid.UUID, name string, platform Platform) *RegressionSet {
	return &RegressionSet{
		Name:      name,
		Platform:  platform,
		CreatedBy: ownerID,
	}
}
