package run

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/regresshub/regresshub/regressionset"
	"github.com/regresshub/regresshub/testcase"
	"gorm.io/gorm"
)

var (
	// ErrRunNotFound is returned when a run is not found.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunItemNotFound is returned when a run item is not found.
	ErrRunItemNotFound = errors.New("run item not found")

	// ErrNotOwner is returned when the acting user did not start the run
	// (or does not own the regression set being started).
	ErrNotOwner = errors.New("user does not own this resource")

	// ErrInvalidStatus is returned when a status value is not recognized.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidResultStatus is returned when recording a result with a
	// status that is not Pass, Fail or Skipped.
	ErrInvalidResultStatus = errors.New("result status must be Pass, Fail or Skipped")

	// ErrInvalidRegressionSetID is returned when regression_set_id is not set.
	ErrInvalidRegressionSetID = errors.New("regression_set_id is required")

	// ErrInvalidStartedBy is returned when started_by is not set.
	ErrInvalidStartedBy = errors.New("started_by is required")
)

// Status is the lifecycle state of a run. A run starts In Progress, completes
// automatically once every item has a result, and may be cancelled at any
// point. Completed and Cancelled are terminal.
type Status string

const (
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
)

// IsValid checks if the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal checks if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ItemStatus is the execution state of a single run item.
type ItemStatus string

const (
	ItemStatusNotExecuted ItemStatus = "Not Executed"
	ItemStatusPass        ItemStatus = "Pass"
	ItemStatusFail        ItemStatus = "Fail"
	ItemStatusSkipped     ItemStatus = "Skipped"
)

// IsValid checks if the item status is a known value.
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusNotExecuted, ItemStatusPass, ItemStatusFail, ItemStatusSkipped:
		return true
	default:
		return false
	}
}

// IsResult checks if the item status is a recordable result.
func (s ItemStatus) IsResult() bool {
	return s == ItemStatusPass || s == ItemStatusFail || s == ItemStatusSkipped
}

// Run is one execution session over a snapshot of a regression set's test
// cases. TotalCases is fixed at start time; the result counters only ever
// move by relative increments so concurrent item updates cannot clobber
// each other.
type Run struct {
	ID              uuid.UUID                    `json:"id" gorm:"type:char(36);primaryKey"`
	RegressionSetID uuid.UUID                    `json:"regression_set_id" gorm:"type:char(36);not null;index:idx_runs_regression_set_id"`
	RegressionSet   *regressionset.RegressionSet `json:"regression_set,omitempty" gorm:"foreignKey:RegressionSetID"`
	StartedBy       uuid.UUID                    `json:"started_by" gorm:"type:char(36);not null;index:idx_runs_started_by"`
	Status          Status                       `json:"status" gorm:"type:varchar(20);not null;default:'In Progress';index:idx_runs_status"`
	TotalCases      int                          `json:"total_cases" gorm:"not null;default:0"`
	Passed          int                          `json:"passed" gorm:"not null;default:0"`
	Failed          int                          `json:"failed" gorm:"not null;default:0"`
	Skipped         int                          `json:"skipped" gorm:"not null;default:0"`
	CreatedAt       time.Time                    `json:"created_at"`
	CompletedAt     *time.Time                   `json:"completed_at,omitempty"`
}

// BeforeCreate hook to generate a UUID before creating a new run.
func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Validate checks if the run has valid required fields.
func (r *Run) Validate() error {
	if r.RegressionSetID == uuid.Nil {
		return ErrInvalidRegressionSetID
	}
	if r.StartedBy == uuid.Nil {
		return ErrInvalidStartedBy
	}
	if !r.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// Executed returns how many items have a recorded result.
func (r *Run) Executed() int {
	return r.Passed + r.Failed + r.Skipped
}

// RunItem is one test case's execution slot within a run. The test case
// reference is a snapshot taken at run start; later edits to the test case
// list do not affect the run. Order is 1-based and unique within a run.
type RunItem struct {
	ID            uuid.UUID          `json:"id" gorm:"type:char(36);primaryKey"`
	RunID         uuid.UUID          `json:"run_id" gorm:"type:char(36);not null;uniqueIndex:idx_run_items_run_order,priority:1"`
	TestCaseID    uuid.UUID          `json:"test_case_id" gorm:"type:char(36);not null;index:idx_run_items_test_case_id"`
	TestCase      *testcase.TestCase `json:"test_case,omitempty" gorm:"foreignKey:TestCaseID"`
	Order         int                `json:"order" gorm:"column:item_order;not null;uniqueIndex:idx_run_items_run_order,priority:2"`
	Status        ItemStatus         `json:"status" gorm:"type:varchar(20);not null;default:'Not Executed'"`
	ActualResults string             `json:"actual_results" gorm:"type:text"`
	StartedAt     *time.Time         `json:"started_at,omitempty"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
}

// BeforeCreate hook to generate a UUID before creating a new run item.
func (ri *RunItem) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == uuid.Nil {
		ri.ID = uuid.New()
	}
	return nil
}
