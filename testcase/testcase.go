package testcase

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrTestCaseNotFound is returned when a test case is not found.
	ErrTestCaseNotFound = errors.New("test case not found")

	// ErrInvalidCaseLabel is returned when the external case label is empty.
	ErrInvalidCaseLabel = errors.New("test case label is required")

	// ErrInvalidModule is returned when the module is empty.
	ErrInvalidModule = errors.New("module is required")

	// ErrInvalidExpectedResult is returned when the expected result is empty.
	ErrInvalidExpectedResult = errors.New("expected result is required")

	// ErrInvalidRegressionSetID is returned when regression_set_id is not set.
	ErrInvalidRegressionSetID = errors.New("regression_set_id is required")

	// ErrInvalidStatus is returned when the status is not a known value.
	ErrInvalidStatus = errors.New("invalid test case status")
)

// Status is the standing result recorded on a test case definition itself,
// independent of any run.
type Status string

const (
	StatusNotExecuted Status = "Not Executed"
	StatusPass        Status = "Pass"
	StatusFail        Status = "Fail"
)

// IsValid checks if the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusNotExecuted, StatusPass, StatusFail:
		return true
	default:
		return false
	}
}

// TestCase is a structured manual-test definition within a regression set.
// CaseLabel is the tester-facing identifier (e.g. "TC-042"), distinct from
// the database primary key.
type TestCase struct {
	ID              uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	RegressionSetID uuid.UUID `json:"regression_set_id" gorm:"type:char(36);not null;index:idx_test_cases_regression_set_id"`
	CaseLabel       string    `json:"case_label" gorm:"not null"`
	UserType        string    `json:"user_type"`
	Platform        string    `json:"platform"`
	Module          string    `json:"module" gorm:"not null;index:idx_test_cases_module"`
	TestScenario    string    `json:"test_scenario" gorm:"type:text"`
	Title           string    `json:"title" gorm:"type:text"`
	PreConditions   string    `json:"pre_conditions" gorm:"type:text"`
	TestData        string    `json:"test_data" gorm:"type:text"`
	TestStep        string    `json:"test_step" gorm:"type:text"`
	ExpectedResult  string    `json:"expected_result" gorm:"type:text;not null"`
	ActualResults   string    `json:"actual_results" gorm:"type:text"`
	Status          Status    `json:"status" gorm:"type:varchar(20);not null;default:'Not Executed'"`
	CreatedAt       time.Time `json:"created_at"`
}

// BeforeCreate hook to generate a UUID before creating a new test case.
func (tc *TestCase) BeforeCreate(tx *gorm.DB) error {
	if tc.ID == uuid.Nil {
		tc.ID = uuid.New()
	}
	return nil
}

// Validate checks if the test case has valid required fields.
func (tc *TestCase) Validate() error {
	if tc.RegressionSetID == uuid.Nil {
		return ErrInvalidRegressionSetID
	}
	if tc.CaseLabel == "" {
		return ErrInvalidCaseLabel
	}
	if tc.Module == "" {
		return ErrInvalidModule
	}
	if tc.ExpectedResult == "" {
		return ErrInvalidExpectedResult
	}
	if !tc.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}
