package regressionset

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/regresshub/regresshub/logger"
	"gorm.io/gorm"
)

// MySQLStore implements the Store interface using GORM and MySQL.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new MySQL-backed regression set store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{db: db, logger: log}
}

// Create creates a new regression set in the database.
func (s *MySQLStore) Create(ctx context.Context, set *RegressionSet) error {
	if err := set.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(set).Error; err != nil {
		s.logger.Error(ctx, "failed to create regression set", logger.Fields{
			"error":      err.Error(),
			"created_by": set.CreatedBy.String(),
		})
		return err
	}

	s.logger.Info(ctx, "regression set created", logger.Fields{
		"regression_set_id": set.ID.String(),
		"platform":          set.Platform,
	})

	return nil
}

// GetByID retrieves a regression set by its ID.
func (s *MySQLStore) GetByID(ctx context.Context, id uuid.UUID) (*RegressionSet, error) {
	var set RegressionSet
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&set).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegressionSetNotFound
		}
		s.logger.Error(ctx, "failed to get regression set by ID", logger.Fields{
			"error":             err.Error(),
			"regression_set_id": id.String(),
		})
		return nil, err
	}

	return &set, nil
}

// Update updates a regression set with the given setters.
func (s *MySQLStore) Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error {
	set, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, setter := range setters {
		if err := setter(set); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Save(set).Error; err != nil {
		s.logger.Error(ctx, "failed to update regression set", logger.Fields{
			"error":             err.Error(),
			"regression_set_id": id.String(),
		})
		return err
	}

	return nil
}

// Delete removes a regression set.
func (s *MySQLStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&RegressionSet{})

	if result.Error != nil {
		s.logger.Error(ctx, "failed to delete regression set", logger.Fields{
			"error":             result.Error.Error(),
			"regression_set_id": id.String(),
		})
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrRegressionSetNotFound
	}

	s.logger.Info(ctx, "regression set deleted", logger.Fields{
		"regression_set_id": id.String(),
	})

	return nil
}

// ListByOwner retrieves a paginated list of regression sets for an owner,
// newest first, optionally filtered by platform.
func (s *MySQLStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, platform Platform, limit, offset int) ([]*RegressionSet, error) {
	var sets []*RegressionSet
	query := s.db.WithContext(ctx).Where("created_by = ?", ownerID)
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&sets).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list regression sets", logger.Fields{
			"error":    err.Error(),
			"owner_id": ownerID.String(),
		})
		return nil, err
	}

	return sets, nil
}

// CountByOwner returns the total number of sets matching ListByOwner's filter.
func (s *MySQLStore) CountByOwner(ctx context.Context, ownerID uuid.UUID, platform Platform) (int64, error) {
	var count int64
	query := s.db.WithContext(ctx).Model(&RegressionSet{}).Where("created_by = ?", ownerID)
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}

	if err := query.Count(&count).Error; err != nil {
		s.logger.Error(ctx, "failed to count regression sets", logger.Fields{
			"error":    err.Error(),
			"owner_id": ownerID.String(),
		})
		return 0, err
	}

	return count, nil
}
