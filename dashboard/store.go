package dashboard

import (
	"context"

	"github.com/google/uuid"
	"github.com/regresshub/regresshub/run"
)

// Store defines the interface for dashboard aggregation queries. All queries
// are scoped to resources the given user owns.
type Store interface {
	// Overview summarizes the user's regression sets, test cases and runs.
	Overview(ctx context.Context, userID uuid.UUID, rng DateRange) (*Overview, error)

	// RecentRuns retrieves the user's newest runs with their regression
	// sets preloaded.
	RecentRuns(ctx context.Context, userID uuid.UUID, limit int) ([]*run.Run, error)

	// PassFailTrend aggregates run results per calendar day, oldest first.
	PassFailTrend(ctx context.Context, userID uuid.UUID, rng DateRange) ([]TrendPoint, error)

	// PlatformStats counts the user's runs per platform.
	PlatformStats(ctx context.Context, userID uuid.UUID, rng DateRange) (PlatformStats, error)

	// ModuleFailures ranks test case modules by failed run items.
	ModuleFailures(ctx context.Context, userID uuid.UUID, rng DateRange, limit int) ([]ModuleFailure, error)

	// SlowTests ranks executed run items by wall-clock duration.
	SlowTests(ctx context.Context, userID uuid.UUID, rng DateRange, limit int) ([]SlowTest, error)
}
