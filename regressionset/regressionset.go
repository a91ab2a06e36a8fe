package regressionset

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrRegressionSetNotFound is returned when a regression set is not found.
	ErrRegressionSetNotFound = errors.New("regression set not found")

	// ErrInvalidName is returned when a regression set name is empty.
	ErrInvalidName = errors.New("regression set name is required")

	// ErrInvalidPlatform is returned when the platform is not one of the known values.
	ErrInvalidPlatform = errors.New("invalid platform: must be Web, iOS, Android or TV")

	// ErrInvalidCreatedBy is returned when created_by is not set.
	ErrInvalidCreatedBy = errors.New("created_by is required")
)

// Platform identifies which product surface a regression set targets.
type Platform string

const (
	PlatformWeb     Platform = "Web"
	PlatformIOS     Platform = "iOS"
	PlatformAndroid Platform = "Android"
	PlatformTV      Platform = "TV"
)

// IsValid checks if the platform is one of the known values.
func (p Platform) IsValid() bool {
	switch p {
	case PlatformWeb, PlatformIOS, PlatformAndroid, PlatformTV:
		return true
	default:
		return false
	}
}

// RegressionSet is a named, platform-tagged collection of test cases owned by
// a single user.
type RegressionSet struct {
	ID          uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	Platform    Platform  `json:"platform" gorm:"type:varchar(20);not null;index:idx_regression_sets_platform"`
	CreatedBy   uuid.UUID `json:"created_by" gorm:"type:char(36);not null;index:idx_regression_sets_created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate hook to generate a UUID before creating a new regression set.
func (rs *RegressionSet) BeforeCreate(tx *gorm.DB) error {
	if rs.ID == uuid.Nil {
		rs.ID = uuid.New()
	}
	return nil
}

// Validate checks if the regression set has valid required fields.
func (rs *RegressionSet) Validate() error {
	if rs.Name == "" {
		return ErrInvalidName
	}
	if !rs.Platform.IsValid() {
		return ErrInvalidPlatform
	}
	if rs.CreatedBy == uuid.Nil {
		return ErrInvalidCreatedBy
	}
	return nil
}
