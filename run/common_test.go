package run

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/regresshub/regresshub/logger"
	"github.com/regresshub/regresshub/regressionset"
	"github.com/regresshub/regresshub/testcase"
	"github.com/regresshub/regresshub/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestStore creates a test database and a run store for testing.
func setupTestStore(t *testing.T) (*gorm.DB, *MySQLStore) {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &regressionset.RegressionSet{}, &testcase.TestCase{}, &Run{}, &RunItem{})

	log := logger.NewTestLogger()
	store := NewMySQLStore(db, log)

	return db, store
}

// setupTestEngine creates a test database and a fully wired engine.
func setupTestEngine(t *testing.T) (*gorm.DB, *Engine) {
	db, store := setupTestStore(t)

	log := logger.NewTestLogger()
	sets := regressionset.NewMySQLStore(db, log)
	cases := testcase.NewMySQLStore(db, log)

	return db, NewEngine(store, sets, cases, log)
}

// createRegressionSet inserts a regression set owned by the given user.
func createRegressionSet(t *testing.T, db *gorm.DB, ownerID uuid.UUID, platform regressionset.Platform) *regressionset.RegressionSet {
	t.Helper()

	set := &regressionset.RegressionSet{
		Name:      "Release regression",
		Platform:  platform,
		CreatedBy: ownerID,
	}
	require.NoError(t, db.Create(set).Error)

	return set
}

// createTestCases inserts n test cases into the regression set, labelled
// TC-001..TC-n in creation order.
func createTestCases(t *testing.T, db *gorm.DB, setID uuid.UUID, n int) []*testcase.TestCase {
	t.Helper()

	cases := make([]*testcase.TestCase, 0, n)
	for i := 1; i <= n; i++ {
		tc := &testcase.TestCase{
			RegressionSetID: setID,
			CaseLabel:       fmt.Sprintf("TC-%03d", i),
			Module:          "Checkout",
			Title:           fmt.Sprintf("Scenario %d", i),
			ExpectedResult:  "Order is placed",
			Status:          testcase.StatusNotExecuted,
		}
		require.NoError(t, db.Create(tc).Error)
		cases = append(cases, tc)
	}

	return cases
}

// startTestRun starts a run through the engine over a fresh regression set
// with n test cases, returning the set owner, the set and the run.
func startTestRun(t *testing.T, db *gorm.DB, engine *Engine, n int) (uuid.UUID, *regressionset.RegressionSet, *Run) {
	t.Helper()

	ownerID := uuid.New()
	set := createRegressionSet(t, db, ownerID, regressionset.PlatformWeb)
	createTestCases(t, db, set.ID, n)

	r, err := engine.Start(context.Background(), set.ID, ownerID)
	require.NoError(t, err)

	return ownerID, set, r
}

func strPtr(s string) *string {
	return &s
}
