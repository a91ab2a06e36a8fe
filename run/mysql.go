package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/regresshub/regresshub/logger"
	"github.com/regresshub/regresshub/regressionset"
	"gorm.io/gorm"
)

// recordResultRetries bounds how often RecordResult re-reads an item whose
// status moved between the read and the guarded write.
const recordResultRetries = 3

// errStaleItemStatus signals that the guarded item update matched no row
// because another writer changed the status first.
var errStaleItemStatus = errors.New("run item status changed concurrently")

// MySQLStore implements the Store interface using GORM and MySQL.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new MySQL-backed run store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{db: db, logger: log}
}

// CreateWithItems inserts the run and its item snapshot atomically. A failure
// on any item rolls back the run row as well, so a run can never exist with a
// partial snapshot.
func (s *MySQLStore) CreateWithItems(ctx context.Context, r *Run, items []*RunItem) error {
	if r.Status == "" {
		r.Status = StatusInProgress
	}

	if err := r.Validate(); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(r).Error; err != nil {
			return err
		}

		for _, item := range items {
			item.RunID = r.ID
			if item.Status == "" {
				item.Status = ItemStatusNotExecuted
			}
		}

		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		s.logger.Error(ctx, "failed to create run", logger.Fields{
			"error":             err.Error(),
			"regression_set_id": r.RegressionSetID.String(),
			"items":             len(items),
		})
		return err
	}

	return nil
}

// GetByID retrieves a run by its ID with its regression set preloaded.
func (s *MySQLStore) GetByID(ctx context.Context, id uuid.UUID) (*Run, error) {
	var r Run
	err := s.db.WithContext(ctx).
		Preload("RegressionSet").
		Where("id = ?", id).
		First(&r).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		s.logger.Error(ctx, "failed to get run by ID", logger.Fields{
			"error":  err.Error(),
			"run_id": id.String(),
		})
		return nil, err
	}

	return &r, nil
}

// GetItem retrieves a run item by its ID.
func (s *MySQLStore) GetItem(ctx context.Context, id uuid.UUID) (*RunItem, error) {
	var item RunItem
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&item).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunItemNotFound
		}
		s.logger.Error(ctx, "failed to get run item by ID", logger.Fields{
			"error":       err.Error(),
			"run_item_id": id.String(),
		})
		return nil, err
	}

	return &item, nil
}

// ListItems retrieves all items of a run in dispatch order.
func (s *MySQLStore) ListItems(ctx context.Context, runID uuid.UUID) ([]*RunItem, error) {
	var items []*RunItem
	err := s.db.WithContext(ctx).
		Preload("TestCase").
		Where("run_id = ?", runID).
		Order("item_order ASC").
		Find(&items).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list run items", logger.Fields{
			"error":  err.Error(),
			"run_id": runID.String(),
		})
		return nil, err
	}

	return items, nil
}

// NextNotExecuted retrieves the lowest-order pending item of the run. The
// query does not modify anything, so asking repeatedly without recording a
// result hands out the same item.
func (s *MySQLStore) NextNotExecuted(ctx context.Context, runID uuid.UUID) (*RunItem, error) {
	var item RunItem
	err := s.db.WithContext(ctx).
		Preload("TestCase").
		Where("run_id = ? AND status = ?", runID, ItemStatusNotExecuted).
		Order("item_order ASC").
		First(&item).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error(ctx, "failed to get next run item", logger.Fields{
			"error":  err.Error(),
			"run_id": runID.String(),
		})
		return nil, err
	}

	return &item, nil
}

// RecordResult writes a result onto a run item. The item update is guarded on
// the status read at the start of the transaction; if another writer got there
// first the transaction is retried so the counter deltas are always computed
// against the transition that actually happened.
func (s *MySQLStore) RecordResult(ctx context.Context, itemID uuid.UUID, status ItemStatus, actualResults *string) (*RunItem, *Run, error) {
	if !status.IsResult() {
		return nil, nil, ErrInvalidResultStatus
	}

	var lastErr error
	for attempt := 0; attempt < recordResultRetries; attempt++ {
		item, r, err := s.recordResult(ctx, itemID, status, actualResults)
		if errors.Is(err, errStaleItemStatus) {
			lastErr = err
			continue
		}
		if err != nil {
			if !errors.Is(err, ErrRunItemNotFound) {
				s.logger.Error(ctx, "failed to record run item result", logger.Fields{
					"error":       err.Error(),
					"run_item_id": itemID.String(),
					"status":      string(status),
				})
			}
			return nil, nil, err
		}
		return item, r, nil
	}

	return nil, nil, fmt.Errorf("recording result for item %s: %w", itemID, lastErr)
}

func (s *MySQLStore) recordResult(ctx context.Context, itemID uuid.UUID, status ItemStatus, actualResults *string) (*RunItem, *Run, error) {
	var (
		item RunItem
		r    Run
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", itemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRunItemNotFound
			}
			return err
		}

		previous := item.Status
		now := time.Now()

		updates := map[string]interface{}{
			"status":       status,
			"completed_at": now,
		}
		if actualResults != nil {
			updates["actual_results"] = *actualResults
		}
		if item.StartedAt == nil {
			updates["started_at"] = now
		}

		result := tx.Model(&RunItem{}).
			Where("id = ? AND status = ?", itemID, previous).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errStaleItemStatus
		}

		item.Status = status
		if actualResults != nil {
			item.ActualResults = *actualResults
		}
		if item.StartedAt == nil {
			item.StartedAt = &now
		}
		item.CompletedAt = &now

		// Counters move by relative deltas keyed on the observed transition.
		// Re-recording the same result is a net zero.
		if previous != status {
			deltas := make(map[string]interface{}, 2)
			if col := counterColumn(previous); col != "" {
				deltas[col] = gorm.Expr(col + " - 1")
			}
			if col := counterColumn(status); col != "" {
				deltas[col] = gorm.Expr(col + " + 1")
			}
			err := tx.Model(&Run{}).
				Where("id = ?", item.RunID).
				UpdateColumns(deltas).Error
			if err != nil {
				return err
			}
		}

		var remaining int64
		err := tx.Model(&RunItem{}).
			Where("run_id = ? AND status = ?", item.RunID, ItemStatusNotExecuted).
			Count(&remaining).Error
		if err != nil {
			return err
		}

		// Only an In Progress run completes itself; a cancelled run stays
		// cancelled even if its last item gets a late result.
		if remaining == 0 {
			result := tx.Model(&Run{}).
				Where("id = ? AND status = ?", item.RunID, StatusInProgress).
				Updates(map[string]interface{}{
					"status":       StatusCompleted,
					"completed_at": now,
				})
			if result.Error != nil {
				return result.Error
			}
		}

		if err := tx.Where("id = ?", item.RunID).First(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRunNotFound
			}
			return err
		}

		return nil
	})

	if err != nil {
		return nil, nil, err
	}

	return &item, &r, nil
}

// counterColumn maps an item status to the run counter column it feeds.
// Not Executed has no counter.
func counterColumn(status ItemStatus) string {
	switch status {
	case ItemStatusPass:
		return "passed"
	case ItemStatusFail:
		return "failed"
	case ItemStatusSkipped:
		return "skipped"
	default:
		return ""
	}
}

// Cancel marks the run Cancelled. Cancellation is unconditional; cancelling
// an already terminal run overwrites its status and completion time.
func (s *MySQLStore) Cancel(ctx context.Context, runID uuid.UUID) (*Run, error) {
	now := time.Now()

	result := s.db.WithContext(ctx).
		Model(&Run{}).
		Where("id = ?", runID).
		Updates(map[string]interface{}{
			"status":       StatusCancelled,
			"completed_at": now,
		})

	if result.Error != nil {
		s.logger.Error(ctx, "failed to cancel run", logger.Fields{
			"error":  result.Error.Error(),
			"run_id": runID.String(),
		})
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrRunNotFound
	}

	return s.GetByID(ctx, runID)
}

// ListByOwner retrieves runs started by the given user, newest first.
func (s *MySQLStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter HistoryFilter) ([]*Run, int64, error) {
	base := func() *gorm.DB {
		query := s.db.WithContext(ctx).
			Model(&Run{}).
			Where("started_by = ?", ownerID)

		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.Platform != "" {
			query = query.Where("regression_set_id IN (?)",
				s.db.WithContext(ctx).
					Model(&regressionset.RegressionSet{}).
					Select("id").
					Where("platform = ?", filter.Platform))
		}

		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		s.logger.Error(ctx, "failed to count runs", logger.Fields{
			"error":   err.Error(),
			"user_id": ownerID.String(),
		})
		return nil, 0, err
	}

	var runs []*Run
	err := base().
		Preload("RegressionSet").
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Find(&runs).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list runs", logger.Fields{
			"error":   err.Error(),
			"user_id": ownerID.String(),
		})
		return nil, 0, err
	}

	return runs, total, nil
}
