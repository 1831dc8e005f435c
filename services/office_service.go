package services

import (
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/property-system/tenancy-api/models"
)

// OfficeService resolves which office a principal acts for
type OfficeService struct {
	db *gorm.DB
}

// NewOfficeService creates a new office service
func NewOfficeService(db *gorm.DB) *OfficeService {
	return &OfficeService{db: db}
}

// ResolveOfficeForUser returns the office a user's writes are attributed to.
// An office the user owns wins over a staff membership; users attached to no
// office at all resolve to nil, which lands their contracts in the shared
// null-office bucket.
func (s *OfficeService) ResolveOfficeForUser(tx *gorm.DB, userID uint) (*uint, error) {
	var office models.Office
	err := tx.Where("owner_id = ?", userID).Order("id").First(&office).Error
	if err == nil {
		return &office.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to resolve owned office: %w", err)
	}

	var membership models.OfficeUser
	err = tx.Where("user_id = ? AND is_active = ?", userID, true).Order("id").First(&membership).Error
	if err == nil {
		return &membership.OfficeID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to resolve office membership: %w", err)
	}

	slog.Info("User has no office, using shared bucket", "userId", userID)
	return nil, nil
}
