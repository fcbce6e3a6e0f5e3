package repositories

import (
	"fmt"

	"leasedesk/internal/models"

	"gorm.io/gorm"
)

// GORMAuditRepository is a GORM implementation of AuditRepository.
type GORMAuditRepository struct {
	db *gorm.DB
}

// NewGORMAuditRepository creates a new instance of GORMAuditRepository.
func NewGORMAuditRepository(db *gorm.DB) *GORMAuditRepository {
	return &GORMAuditRepository{db: db}
}

// GetByAdsID returns the full trail for one product, oldest first. Snapshots
// recorded in the same instant keep insertion order via the id tiebreak.
func (r *GORMAuditRepository) GetByAdsID(adsID string) ([]models.AuditSnapshot, error) {
	var snapshots []models.AuditSnapshot
	err := r.db.Where("ads_id = ?", adsID).
		Order("recorded_at asc").Order("id asc").
		Find(&snapshots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get audit trail for product %s: %w", adsID, err)
	}
	return snapshots, nil
}
