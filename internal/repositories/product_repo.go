package repositories

import "leasedesk/internal/models"

// ProductRepository defines the interface for product inventory data access.
// Create and Update append the matching audit snapshot atomically with the
// product write.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetAvailable() ([]models.Product, error)
	GetByAdsID(adsID string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
}
