package repositories

import (
	"fmt"

	"leasedesk/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetAvailable retrieves the subset of products that can still be attached
// to a new order, i.e. those whose order status is INVENTORY.
func (r *GORMProductRepository) GetAvailable() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Where("order_status = ?", models.OrderStatusInventory).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get available products: %w", err)
	}
	return products, nil
}

// GetByAdsID retrieves a single product by its public ADS identifier.
func (r *GORMProductRepository) GetByAdsID(adsID string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "ads_id = ?", adsID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product with ADS ID %s not found", adsID)
		}
		return nil, fmt.Errorf("failed to get product by ADS ID %s: %w", adsID, err)
	}
	return &product, nil
}

// Create inserts a new product and its CREATED audit snapshot in one
// transaction.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.AdsID == "" {
		product.AdsID = "ADS-" + uuid.New().String()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		snap := models.SnapshotOf(product, models.AuditActionCreated, product.CreatedBy,
			"product registered", product.CreatedAt)
		if err := tx.Create(&snap).Error; err != nil {
			return fmt.Errorf("failed to record creation snapshot: %w", err)
		}
		return nil
	})
}

// Update saves the product and appends an UPDATED audit snapshot in one
// transaction.
func (r *GORMProductRepository) Update(product *models.Product) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Save(product)
		if res.Error != nil {
			return fmt.Errorf("failed to update product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product with ADS ID %s not found for update", product.AdsID)
		}
		snap := models.SnapshotOf(product, models.AuditActionUpdated, product.LastModifiedBy,
			"product details updated", product.LastModifiedAt)
		if err := tx.Create(&snap).Error; err != nil {
			return fmt.Errorf("failed to record update snapshot: %w", err)
		}
		return nil
	})
}
