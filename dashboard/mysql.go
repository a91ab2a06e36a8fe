package dashboard

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/regresshub/regresshub/logger"
	"github.com/regresshub/regresshub/regressionset"
	"github.com/regresshub/regresshub/run"
	"gorm.io/gorm"
)

// MySQLStore implements the Store interface using GORM and MySQL.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new MySQL-backed dashboard store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{db: db, logger: log}
}

// Overview summarizes the user's regression sets, test cases and runs.
func (s *MySQLStore) Overview(ctx context.Context, userID uuid.UUID, rng DateRange) (*Overview, error) {
	overview := &Overview{}

	setQuery := s.db.WithContext(ctx).
		Model(&regressionset.RegressionSet{}).
		Where("created_by = ?", userID)
	err := applyDateRange(setQuery, "created_at", rng).
		Count(&overview.TotalRegressionSets).Error
	if err != nil {
		return nil, s.logged(ctx, "failed to count regression sets", userID, err)
	}

	// Test cases are scoped through set ownership, not their own dates.
	setIDs := s.db.WithContext(ctx).
		Model(&regressionset.RegressionSet{}).
		Select("id").
		Where("created_by = ?", userID)
	caseQuery := s.db.WithContext(ctx).
		Table("test_cases").
		Where("regression_set_id IN (?)", setIDs)
	err = applyDateRange(caseQuery, "created_at", rng).
		Count(&overview.TotalTestCases).Error
	if err != nil {
		return nil, s.logged(ctx, "failed to count test cases", userID, err)
	}

	var summary struct {
		TotalRuns     int64
		ActiveRuns    int64
		CompletedRuns int64
		Passed        int64
		Failed        int64
		Skipped       int64
		TotalCases    int64
	}

	runQuery := s.db.WithContext(ctx).
		Model(&run.Run{}).
		Where("started_by = ?", userID)
	err = applyDateRange(runQuery, "created_at", rng).
		Select(`COUNT(*) AS total_runs,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS active_runs,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed_runs,
			COALESCE(SUM(passed), 0) AS passed,
			COALESCE(SUM(failed), 0) AS failed,
			COALESCE(SUM(skipped), 0) AS skipped,
			COALESCE(SUM(total_cases), 0) AS total_cases`,
			run.StatusInProgress, run.StatusCompleted).
		Scan(&summary).Error
	if err != nil {
		return nil, s.logged(ctx, "failed to summarize runs", userID, err)
	}

	overview.TotalRuns = summary.TotalRuns
	overview.ActiveRuns = summary.ActiveRuns
	overview.CompletedRuns = summary.CompletedRuns

	// Rates are over the planned case count when known, otherwise over
	// whatever was executed.
	executed := summary.TotalCases
	if executed == 0 {
		executed = summary.Passed + summary.Failed + summary.Skipped
	}
	if executed > 0 {
		overview.PassRate = roundRate(summary.Passed, executed)
		overview.FailRate = roundRate(summary.Failed, executed)
		overview.SkippedRate = roundRate(summary.Skipped, executed)
	}

	return overview, nil
}

// RecentRuns retrieves the user's newest runs.
func (s *MySQLStore) RecentRuns(ctx context.Context, userID uuid.UUID, limit int) ([]*run.Run, error) {
	limit = clampLimit(limit, DefaultRecentRunsLimit)

	var runs []*run.Run
	err := s.db.WithContext(ctx).
		Preload("RegressionSet").
		Where("started_by = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error

	if err != nil {
		return nil, s.logged(ctx, "failed to list recent runs", userID, err)
	}

	return runs, nil
}

// PassFailTrend aggregates run results per calendar day, oldest first.
func (s *MySQLStore) PassFailTrend(ctx context.Context, userID uuid.UUID, rng DateRange) ([]TrendPoint, error) {
	points := make([]TrendPoint, 0)

	query := s.db.WithContext(ctx).
		Model(&run.Run{}).
		Where("started_by = ?", userID)
	err := applyDateRange(query, "created_at", rng).
		Select(`DATE(created_at) AS date,
			COALESCE(SUM(passed), 0) AS passed,
			COALESCE(SUM(failed), 0) AS failed,
			COALESCE(SUM(skipped), 0) AS skipped`).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&points).Error

	if err != nil {
		return nil, s.logged(ctx, "failed to aggregate trend", userID, err)
	}

	return points, nil
}

// PlatformStats counts the user's runs per platform. All known platforms are
// present in the result, zero-valued when unused.
func (s *MySQLStore) PlatformStats(ctx context.Context, userID uuid.UUID, rng DateRange) (PlatformStats, error) {
	stats := PlatformStats{
		regressionset.PlatformWeb:     0,
		regressionset.PlatformIOS:     0,
		regressionset.PlatformAndroid: 0,
		regressionset.PlatformTV:      0,
	}

	var rows []struct {
		Platform regressionset.Platform
		Count    int64
	}

	query := s.db.WithContext(ctx).
		Table("runs").
		Select("regression_sets.platform AS platform, COUNT(*) AS count").
		Joins("JOIN regression_sets ON regression_sets.id = runs.regression_set_id").
		Where("runs.started_by = ?", userID)
	err := applyDateRange(query, "runs.created_at", rng).
		Group("regression_sets.platform").
		Scan(&rows).Error

	if err != nil {
		return nil, s.logged(ctx, "failed to aggregate platform stats", userID, err)
	}

	for _, row := range rows {
		if _, ok := stats[row.Platform]; ok {
			stats[row.Platform] = row.Count
		}
	}

	return stats, nil
}

// ModuleFailures ranks test case modules by failed run items.
func (s *MySQLStore) ModuleFailures(ctx context.Context, userID uuid.UUID, rng DateRange, limit int) ([]ModuleFailure, error) {
	limit = clampLimit(limit, DefaultModuleFailuresLimit)

	failures := make([]ModuleFailure, 0)

	query := s.db.WithContext(ctx).
		Table("run_items").
		Select("test_cases.module AS module, COUNT(*) AS failures").
		Joins("JOIN runs ON runs.id = run_items.run_id").
		Joins("JOIN test_cases ON test_cases.id = run_items.test_case_id").
		Where("run_items.status = ?", run.ItemStatusFail).
		Where("runs.started_by = ?", userID)
	err := applyDateRange(query, "runs.created_at", rng).
		Group("test_cases.module").
		Order("failures DESC").
		Limit(limit).
		Scan(&failures).Error

	if err != nil {
		return nil, s.logged(ctx, "failed to aggregate module failures", userID, err)
	}

	return failures, nil
}

// SlowTests ranks executed run items by wall-clock duration. Durations are
// computed from the item timestamps after the scoped rows are fetched, which
// keeps the query portable across backends.
func (s *MySQLStore) SlowTests(ctx context.Context, userID uuid.UUID, rng DateRange, limit int) ([]SlowTest, error) {
	limit = clampLimit(limit, DefaultSlowTestsLimit)

	var rows []struct {
		TestCaseID  uuid.UUID
		CaseLabel   string
		Module      string
		StartedAt   time.Time
		CompletedAt time.Time
	}

	query := s.db.WithContext(ctx).
		Table("run_items").
		Select(`run_items.test_case_id AS test_case_id,
			test_cases.case_label AS case_label,
			test_cases.module AS module,
			run_items.started_at AS started_at,
			run_items.completed_at AS completed_at`).
		Joins("JOIN runs ON runs.id = run_items.run_id").
		Joins("JOIN test_cases ON test_cases.id = run_items.test_case_id").
		Where("run_items.started_at IS NOT NULL AND run_items.completed_at IS NOT NULL").
		Where("runs.started_by = ?", userID)
	err := applyDateRange(query, "runs.created_at", rng).
		Scan(&rows).Error

	if err != nil {
		return nil, s.logged(ctx, "failed to aggregate slow tests", userID, err)
	}

	tests := make([]SlowTest, 0, len(rows))
	for _, row := range rows {
		tests = append(tests, SlowTest{
			TestCaseID: row.TestCaseID,
			CaseLabel:  row.CaseLabel,
			Module:     row.Module,
			DurationMs: row.CompletedAt.Sub(row.StartedAt).Milliseconds(),
		})
	}

	sort.SliceStable(tests, func(i, j int) bool {
		return tests[i].DurationMs > tests[j].DurationMs
	})
	if len(tests) > limit {
		tests = tests[:limit]
	}

	return tests, nil
}

func (s *MySQLStore) logged(ctx context.Context, msg string, userID uuid.UUID, err error) error {
	s.logger.Error(ctx, msg, logger.Fields{
		"error":   err.Error(),
		"user_id": userID.String(),
	})
	return err
}

func applyDateRange(query *gorm.DB, column string, rng DateRange) *gorm.DB {
	if rng.From != nil {
		query = query.Where(column+" >= ?", *rng.From)
	}
	if rng.To != nil {
		query = query.Where(column+" <= ?", *rng.To)
	}
	return query
}

func roundRate(part, whole int64) float64 {
	return math.Round(float64(part)/float64(whole)*1000) / 10
}
