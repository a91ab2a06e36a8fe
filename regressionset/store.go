package regressionset

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the interface for regression set persistence operations.
type Store interface {
	// Create creates a new regression set in the store.
	Create(ctx context.Context, set *RegressionSet) error

	// GetByID retrieves a regression set by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*RegressionSet, error)

	// Update updates a regression set with the given setters.
	Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error

	// Delete removes a regression set.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByOwner retrieves a paginated list of regression sets for an owner,
	// newest first, optionally filtered by platform.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, platform Platform, limit, offset int) ([]*RegressionSet, error)

	// CountByOwner returns the total number of sets matching ListByOwner's filter.
	CountByOwner(ctx context.Context, ownerID uuid.UUID, platform Platform) (int64, error)
}

// UpdateSetter is a function that updates a regression set field.
type UpdateSetter func(*RegressionSet) error
