package run

import (
	"context"

	"github.com/google/uuid"
	"github.com/regresshub/regresshub/logger"
	"github.com/regresshub/regresshub/regressionset"
	"github.com/regresshub/regresshub/testcase"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// NextItem is the outcome of asking a run for its next test case. Done is
// true when no Not Executed item remains; Item is nil in that case. Run is
// the run's current state either way, so callers see the live counters
// alongside the item they are about to execute.
type NextItem struct {
	Done bool     `json:"done"`
	Item *RunItem `json:"item,omitempty"`
	Run  *Run     `json:"run"`
}

// HistoryPage is one page of a user's run history.
type HistoryPage struct {
	Runs  []*Run `json:"runs"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Total int64  `json:"total"`
}

// Engine drives the run lifecycle: starting a run snapshots the regression
// set's test cases into ordered items, results recorded against items keep
// the run's counters reconciled, and the run completes itself when the last
// pending item gets a result. All operations check that the acting user owns
// the resource.
type Engine struct {
	runs   Store
	sets   regressionset.Store
	cases  testcase.Store
	logger logger.Logger
}

// NewEngine creates a run engine on top of the given stores.
func NewEngine(runs Store, sets regressionset.Store, cases testcase.Store, log logger.Logger) *Engine {
	return &Engine{
		runs:   runs,
		sets:   sets,
		cases:  cases,
		logger: log,
	}
}

// Start begins a new run over the regression set. The set's current test
// cases are snapshotted into run items ordered 1..N by case creation order;
// an empty set still yields a valid run with no items.
func (e *Engine) Start(ctx context.Context, regressionSetID, userID uuid.UUID) (*Run, error) {
	set, err := e.sets.GetByID(ctx, regressionSetID)
	if err != nil {
		return nil, err
	}
	if set.CreatedBy != userID {
		return nil, ErrNotOwner
	}

	cases, err := e.cases.ListByRegressionSet(ctx, regressionSetID)
	if err != nil {
		return nil, err
	}

	r := &Run{
		RegressionSetID: regressionSetID,
		StartedBy:       userID,
		Status:          StatusInProgress,
		TotalCases:      len(cases),
	}

	items := make([]*RunItem, 0, len(cases))
	for i, tc := range cases {
		items = append(items, &RunItem{
			TestCaseID: tc.ID,
			Order:      i + 1,
			Status:     ItemStatusNotExecuted,
		})
	}

	if err := e.runs.CreateWithItems(ctx, r, items); err != nil {
		return nil, err
	}

	e.logger.Info(ctx, "run started", logger.Fields{
		"run_id":            r.ID.String(),
		"regression_set_id": regressionSetID.String(),
		"total_cases":       r.TotalCases,
	})

	return r, nil
}

// Get retrieves a run and its items in dispatch order.
func (e *Engine) Get(ctx context.Context, runID, userID uuid.UUID) (*Run, []*RunItem, error) {
	r, err := e.ownedRun(ctx, runID, userID)
	if err != nil {
		return nil, nil, err
	}

	items, err := e.runs.ListItems(ctx, runID)
	if err != nil {
		return nil, nil, err
	}

	return r, items, nil
}

// Next retrieves the next pending item of the run. Asking again without
// recording a result returns the same item; once nothing is pending the
// response flips to done.
func (e *Engine) Next(ctx context.Context, runID, userID uuid.UUID) (*NextItem, error) {
	r, err := e.ownedRun(ctx, runID, userID)
	if err != nil {
		return nil, err
	}

	item, err := e.runs.NextNotExecuted(ctx, runID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return &NextItem{Done: true, Run: r}, nil
	}

	return &NextItem{Item: item, Run: r}, nil
}

// RecordResult records a Pass, Fail or Skipped result on a run item. The
// run's counters and completion state are reconciled atomically with the
// item write. Recording onto an already-resulted item replaces the result
// and moves the counters accordingly.
func (e *Engine) RecordResult(ctx context.Context, itemID, userID uuid.UUID, status ItemStatus, actualResults *string) (*RunItem, *Run, error) {
	if !status.IsResult() {
		return nil, nil, ErrInvalidResultStatus
	}

	item, err := e.runs.GetItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}

	if _, err := e.ownedRun(ctx, item.RunID, userID); err != nil {
		return nil, nil, err
	}

	updated, r, err := e.runs.RecordResult(ctx, itemID, status, actualResults)
	if err != nil {
		return nil, nil, err
	}

	if r.Status == StatusCompleted && r.CompletedAt != nil {
		e.logger.Info(ctx, "run completed", logger.Fields{
			"run_id":  r.ID.String(),
			"passed":  r.Passed,
			"failed":  r.Failed,
			"skipped": r.Skipped,
		})
	}

	return updated, r, nil
}

// Cancel marks the run Cancelled, whatever state it is in.
func (e *Engine) Cancel(ctx context.Context, runID, userID uuid.UUID) (*Run, error) {
	if _, err := e.ownedRun(ctx, runID, userID); err != nil {
		return nil, err
	}

	r, err := e.runs.Cancel(ctx, runID)
	if err != nil {
		return nil, err
	}

	e.logger.Info(ctx, "run cancelled", logger.Fields{
		"run_id": r.ID.String(),
	})

	return r, nil
}

// History retrieves a page of the user's runs, newest first. Page defaults
// to 1, limit to 10 with a cap of 100. An unknown status filter is rejected.
func (e *Engine) History(ctx context.Context, userID uuid.UUID, filter HistoryFilter) (*HistoryPage, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if filter.Platform != "" && !filter.Platform.IsValid() {
		return nil, regressionset.ErrInvalidPlatform
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultHistoryLimit
	}
	if filter.Limit > maxHistoryLimit {
		filter.Limit = maxHistoryLimit
	}

	runs, total, err := e.runs.ListByOwner(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	return &HistoryPage{
		Runs:  runs,
		Page:  filter.Page,
		Limit: filter.Limit,
		Total: total,
	}, nil
}

func (e *Engine) ownedRun(ctx context.Context, runID, userID uuid.UUID) (*Run, error) {
	r, err := e.runs.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if r.StartedBy != userID {
		return nil, ErrNotOwner
	}
	return r, nil
}
