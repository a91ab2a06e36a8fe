package run

import (
	"context"

	"github.com/google/uuid"
	"github.com/regresshub/regresshub/regressionset"
)

// HistoryFilter narrows and pages a run history listing. Zero values mean
// no filter; Page and Limit are normalized by the engine before reaching
// the store.
type HistoryFilter struct {
	Status   Status
	Platform regressionset.Platform
	Page     int
	Limit    int
}

// Store defines the interface for run persistence operations.
type Store interface {
	// CreateWithItems inserts a run and its item snapshot in a single
	// transaction. Item RunIDs are filled in from the created run.
	CreateWithItems(ctx context.Context, r *Run, items []*RunItem) error

	// GetByID retrieves a run by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*Run, error)

	// GetItem retrieves a run item by its ID.
	GetItem(ctx context.Context, id uuid.UUID) (*RunItem, error)

	// ListItems retrieves all items of a run in dispatch order, with the
	// snapshotted test cases preloaded.
	ListItems(ctx context.Context, runID uuid.UUID) ([]*RunItem, error)

	// NextNotExecuted retrieves the lowest-order item of the run still in
	// Not Executed state, with its test case preloaded. Returns (nil, nil)
	// when every item has a result.
	NextNotExecuted(ctx context.Context, runID uuid.UUID) (*RunItem, error)

	// RecordResult writes a result onto a run item and reconciles the run's
	// counters in the same transaction. When the last pending item receives
	// a result and the run is still In Progress, the run is completed.
	// Returns the updated item and run.
	RecordResult(ctx context.Context, itemID uuid.UUID, status ItemStatus, actualResults *string) (*RunItem, *Run, error)

	// Cancel marks a run Cancelled and stamps its completion time,
	// regardless of the run's current status.
	Cancel(ctx context.Context, runID uuid.UUID) (*Run, error)

	// ListByOwner retrieves runs started by the given user, newest first,
	// applying the filter. Returns the page of runs and the total count
	// matching the filter.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, filter HistoryFilter) ([]*Run, int64, error)
}
