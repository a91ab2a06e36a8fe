package testcase

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the interface for test case persistence operations.
type Store interface {
	// Create creates a new test case in the store.
	Create(ctx context.Context, tc *TestCase) error

	// GetByID retrieves a test case by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*TestCase, error)

	// Update updates a test case with the given setters.
	Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error

	// Delete removes a test case.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByRegressionSet retrieves all test cases for a regression set in
	// creation order. This ordering defines the run snapshot sequence.
	ListByRegressionSet(ctx context.Context, regressionSetID uuid.UUID) ([]*TestCase, error)

	// CountByRegressionSet returns how many test cases a regression set holds.
	CountByRegressionSet(ctx context.Context, regressionSetID uuid.UUID) (int64, error)

	// ExistsByCaseLabel reports whether a case with the given label already
	// exists in the regression set.
	ExistsByCaseLabel(ctx context.Context, regressionSetID uuid.UUID, label string) (bool, error)
}

// UpdateSetter is a function that updates a test case field.
type UpdateSetter func(*TestCase) error
