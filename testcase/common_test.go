package testcase

import (
	"testing"

	"github.com/google/uuid"
	"github.com/regresshub/regresshub/logger"
	"github.com/regresshub/regresshub/testutil"
	"gorm.io/gorm"
)

// setupTestStore creates a test database and test case store for testing.
func setupTestStore(t *testing.T) (*gorm.DB, *MySQLStore) {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &TestCase{})

	return db, NewMySQLStore(db, logger.NewTestLogger())
}

// createCase builds a test case with default values.
func createCase(setID uuid.UUID, label string) *TestCase {
	return &TestCase{
		RegressionSetID: setID,
		CaseLabel:       label,
		Module:          "Login",
		Title:           "Valid credentials",
		ExpectedResult:  "User lands on the dashboard",
	}
}
