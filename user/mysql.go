package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/regresshub/regresshub/logger"
	"gorm.io/gorm"
)

// MySQLStore implements the Store interface using GORM and MySQL.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new MySQL-backed user store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{db: db, logger: log}
}

// Create creates a new user in the database.
func (s *MySQLStore) Create(ctx context.Context, u *User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		s.logger.Error(ctx, "failed to create user", logger.Fields{
			"error": err.Error(),
			"email": u.Email,
		})
		return err
	}

	s.logger.Info(ctx, "user created", logger.Fields{
		"user_id": u.ID.String(),
		"email":   u.Email,
	})

	return nil
}

// GetByID retrieves an active user by their ID.
func (s *MySQLStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error(ctx, "failed to get user by ID", logger.Fields{
			"error":   err.Error(),
			"user_id": id.String(),
		})
		return nil, err
	}

	return &u, nil
}

// GetByEmail retrieves an active user by their email address.
func (s *MySQLStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).
		Where("email = ? AND is_active = ?", email, true).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error(ctx, "failed to get user by email", logger.Fields{
			"error": err.Error(),
			"email": email,
		})
		return nil, err
	}

	return &u, nil
}

// Update updates a user with the given setters.
func (s *MySQLStore) Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, setter := range setters {
		if err := setter(u); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Save(u).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		s.logger.Error(ctx, "failed to update user", logger.Fields{
			"error":   err.Error(),
			"user_id": id.String(),
		})
		return err
	}

	return nil
}

// Delete soft deletes a user by setting is_active to false.
func (s *MySQLStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)

	if result.Error != nil {
		s.logger.Error(ctx, "failed to delete user", logger.Fields{
			"error":   result.Error.Error(),
			"user_id": id.String(),
		})
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	s.logger.Info(ctx, "user deleted", logger.Fields{
		"user_id": id.String(),
	})

	return nil
}

// List retrieves a paginated list of active users.
func (s *MySQLStore) List(ctx context.Context, limit, offset int) ([]*User, error) {
	var users []*User
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list users", logger.Fields{
			"error":  err.Error(),
			"limit":  limit,
			"offset": offset,
		})
		return nil, err
	}

	return users, nil
}

// isDuplicateKeyError detects unique constraint violations for MySQL and SQLite.
func isDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "Duplicate entry")
}
