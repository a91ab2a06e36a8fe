package testcase

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

// NewMySQLStore creates a new MySQL-backed test case store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{db: db, logger: log}
}

// Create creates a new test case in the database.
func (s *MySQLStore) Create(ctx context.Context, tc *TestCase) error {
	if tc.Status == "" {
		tc.Status = StatusNotExecuted
	}

	if err := tc.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(tc).Error; err != nil {
		s.logger.Error(ctx, "failed to create test case", logger.Fields{
			"error":             err.Error(),
			"regression_set_id": tc.RegressionSetID.String(),
			"case_label":        tc.CaseLabel,
		})
		return err
	}

	return nil
}

// GetByID retrieves a test case by its ID.
func (s *MySQLStore) GetByID(ctx context.Context, id uuid.UUID) (*TestCase, error) {
	var tc TestCase
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&tc).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTestCaseNotFound
		}
		s.logger.Error(ctx, "failed to get test case by ID", logger.Fields{
			"error":        err.Error(),
			"test_case_id": id.String(),
		})
		return nil, err
	}

	return &tc, nil
}

// Update updates a test case with the given setters.
func (s *MySQLStore) Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error {
	tc, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, setter := range setters {
		if err := setter(tc); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Save(tc).Error; err != nil {
		s.logger.Error(ctx, "failed to update test case", logger.Fields{
			"error":        err.Error(),
			"test_case_id": id.String(),
		})
		return err
	}

	return nil
}

// Delete removes a test case.
func (s *MySQLStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&TestCase{})

	if result.Error != nil {
		s.logger.Error(ctx, "failed to delete test case", logger.Fields{
			"error":        result.Error.Error(),
			"test_case_id": id.String(),
		})
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrTestCaseNotFound
	}

	return nil
}

// ListByRegressionSet retrieves all test cases for a regression set in
// creation order (created_at, then id for a stable tiebreak).
func (s *MySQLStore) ListByRegressionSet(ctx context.Context, regressionSetID uuid.UUID) ([]*TestCase, error) {
	var cases []*TestCase
	err := s.db.WithContext(ctx).
		Where("regression_set_id = ?", regressionSetID).
		Order("created_at ASC, id ASC").
		Find(&cases).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list test cases", logger.Fields{
			"error":             err.Error(),
			"regression_set_id": regressionSetID.String(),
		})
		return nil, err
	}

	return cases, nil
}

// CountByRegressionSet returns how many test cases a regression set holds.
func (s *MySQLStore) CountByRegressionSet(ctx context.Context, regressionSetID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&TestCase{}).
		Where("regression_set_id = ?", regressionSetID).
		Count(&count).Error

	if err != nil {
		s.logger.Error(ctx, "failed to count test cases", logger.Fields{
			"error":             err.Error(),
			"regression_set_id": regressionSetID.String(),
		})
		return 0, err
	}

	return count, nil
}

// ExistsByCaseLabel reports whether a case with the given label already
// exists in the regression set.
func (s *MySQLStore) ExistsByCaseLabel(ctx context.Context, regressionSetID uuid.UUID, label string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&TestCase{}).
		Where("regression_set_id = ? AND case_label = ?", regressionSetID, label).
		Count(&count).Error

	if err != nil {
		s.logger.Error(ctx, "failed to check case label", logger.Fields{
			"error":             err.Error(),
			"regression_set_id": regressionSetID.String(),
			"case_label":        label,
		})
		return false, err
	}

	return count > 0, nil
}
