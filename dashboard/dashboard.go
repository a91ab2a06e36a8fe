package dashboard

import (
	"time"

	"github.com/google/uuid"
	"github.com/regresshub/regresshub/regressionset"
)

// Reporting defaults and caps for the list-shaped widgets.
const (
	DefaultRecentRunsLimit     = 5
	DefaultModuleFailuresLimit = 10
	DefaultSlowTestsLimit      = 5
	MaxWidgetLimit             = 50
)

// DateRange bounds a dashboard query by run creation time. Nil ends are
// unbounded.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Overview summarizes a user's whole workspace. Rates are percentages over
// the planned case count of the matched runs, rounded to one decimal.
type Overview struct {
	TotalRegressionSets int64   `json:"total_regression_sets"`
	TotalTestCases      int64   `json:"total_test_cases"`
	TotalRuns           int64   `json:"total_runs"`
	ActiveRuns          int64   `json:"active_runs"`
	CompletedRuns       int64   `json:"completed_runs"`
	PassRate            float64 `json:"pass_rate"`
	FailRate            float64 `json:"fail_rate"`
	SkippedRate         float64 `json:"skipped_rate"`
}

// TrendPoint is one day's aggregated results across a user's runs.
type TrendPoint struct {
	Date    string `json:"date"`
	Passed  int64  `json:"passed"`
	Failed  int64  `json:"failed"`
	Skipped int64  `json:"skipped"`
}

// PlatformStats counts runs per platform. Every known platform is present,
// zero-valued when unused.
type PlatformStats map[regressionset.Platform]int64

// ModuleFailure counts failed run items per test case module.
type ModuleFailure struct {
	Module   string `json:"module"`
	Failures int64  `json:"failures"`
}

// SlowTest is a run item ranked by wall-clock execution time.
type SlowTest struct {
	TestCaseID uuid.UUID `json:"test_case_id"`
	CaseLabel  string    `json:"case_label"`
	Module     string    `json:"module"`
	DurationMs int64     `json:"duration_ms"`
}

func clampLimit(limit, fallback int) int {
	if limit < 1 {
		limit = fallback
	}
	if limit > MaxWidgetLimit {
		limit = MaxWidgetLimit
	}
	return limit
}
