package services

import (
	"context"
	"log"
	"time"

	"leasedesk/internal/models"
	"leasedesk/internal/repositories"
)

// ProductService handles business logic related to the product inventory.
type ProductService struct {
	repo       repositories.ProductRepository
	publisher  EventPublisher
	trailCache TrailCache
}

// NewProductService creates a new ProductService. Publisher and cache may be nil.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher, trailCache TrailCache) *ProductService {
	return &ProductService{
		repo:       repo,
		publisher:  publisher,
		trailCache: trailCache,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetAvailableProducts retrieves the products still attachable to a new
// order (order status INVENTORY).
func (s *ProductService) GetAvailableProducts() ([]models.Product, error) {
	return s.repo.GetAvailable()
}

// GetProductByAdsID retrieves a single product by its ADS identifier.
func (s *ProductService) GetProductByAdsID(adsID string) (*models.Product, error) {
	return s.repo.GetByAdsID(adsID)
}

// CreateProduct registers a new unit. It stamps the acting user, applies
// lifecycle defaults, and lets the repository append the CREATED snapshot
// atomically.
func (s *ProductService) CreateProduct(product *models.Product, actor string) error {
	now := time.Now()
	product.CreatedBy = actor
	product.CreatedAt = now
	product.LastModifiedBy = actor
	product.LastModifiedAt = now
	if product.ProdHealth == "" {
		product.ProdHealth = models.ProdHealthWorking
	}
	if product.ProdStatus == "" {
		product.ProdStatus = models.ProdStatusAvailable
	}
	if product.OrderStatus == "" {
		product.OrderStatus = models.OrderStatusInventory
	}
	return s.repo.Create(product)
}

// UpdateProduct saves edits to a unit, appends the UPDATED snapshot, then
// signals consumers: the cached history trail is invalidated and a
// product.updated event goes out on the bus. Both signals are best-effort.
func (s *ProductService) UpdateProduct(product *models.Product, actor string) error {
	product.LastModifiedBy = actor
	product.LastModifiedAt = time.Now()
	if err := s.repo.Update(product); err != nil {
		return err
	}
	if s.trailCache != nil {
		if err := s.trailCache.Invalidate(context.Background(), product.AdsID); err != nil {
			log.Printf("Warning: failed to invalidate history cache for product %s: %v", product.AdsID, err)
		}
	}
	if s.publisher != nil {
		event := map[string]interface{}{
			"ads_id":      product.AdsID,
			"prod_status": product.ProdStatus,
			"updated_by":  actor,
		}
		if err := s.publisher.PublishJSON("product.updated", event); err != nil {
			log.Printf("Warning: failed to publish product updated event for %s: %v", product.AdsID, err)
		}
	}
	return nil
}
