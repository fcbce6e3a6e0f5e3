package repositories

import "leasedesk/internal/models"

// AuditRepository defines the read side of the product audit trail. Writes
// happen inside the product and order repositories so a snapshot always
// commits atomically with the mutation it records.
type AuditRepository interface {
	GetByAdsID(adsID string) ([]models.AuditSnapshot, error)
}
