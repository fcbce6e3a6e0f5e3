package repositories

import (
	"fmt"
	"time"

	"leasedesk/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// GetAll retrieves all orders with their items, newest first.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByOrderID retrieves a single order by its human-readable order code.
func (r *GORMOrderRepository) GetByOrderID(orderID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "order_id = ?", orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order with ID %s not found", orderID)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", orderID, err)
	}
	return &order, nil
}

// prodStatusFor maps an order type to the product status it imposes on the
// units it claims.
func prodStatusFor(t models.OrderType) models.ProdStatus {
	if t == models.OrderTypeRent {
		return models.ProdStatusLeased
	}
	return models.ProdStatusSold
}

// CreateOrder applies the four submission effects atomically. The product
// claim is a conditional update guarded on order_status = INVENTORY; zero
// affected rows means another submission won the product in the meantime,
// and the full transaction is rolled back.
func (r *GORMOrderRepository) CreateOrder(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := order.CreatedAt
	if now.IsZero() {
		now = time.Now()
		order.CreatedAt = now
	}

	items := order.Items
	order.Items = nil
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicateOrderID
			}
			return fmt.Errorf("failed to insert order: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
			items[i].CreatedAt = now
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to insert order items: %w", err)
		}

		var unavailable []string
		for _, item := range items {
			res := tx.Model(&models.Product{}).
				Where("ads_id = ? AND order_status = ?", item.AdsID, models.OrderStatusInventory).
				Updates(map[string]interface{}{
					"order_status":     models.OrderStatus(order.OrderType),
					"prod_status":      prodStatusFor(order.OrderType),
					"last_modified_by": order.CreatedBy,
					"last_modified_at": now,
				})
			if res.Error != nil {
				return fmt.Errorf("failed to claim product %s: %w", item.AdsID, res.Error)
			}
			if res.RowsAffected == 0 {
				unavailable = append(unavailable, item.AdsID)
			}
		}
		if len(unavailable) > 0 {
			return &ProductUnavailableError{AdsIDs: unavailable}
		}

		for _, item := range items {
			var product models.Product
			if err := tx.First(&product, "ads_id = ?", item.AdsID).Error; err != nil {
				return fmt.Errorf("failed to reload product %s for snapshot: %w", item.AdsID, err)
			}
			snap := models.SnapshotOf(&product, models.AuditActionUpdated, order.CreatedBy,
				fmt.Sprintf("attached to order %s", order.OrderID), now)
			if err := tx.Create(&snap).Error; err != nil {
				return fmt.Errorf("failed to record snapshot for product %s: %w", item.AdsID, err)
			}
		}
		return nil
	})
	order.Items = items
	return err
}

// UpdateDeliveryStatus advances the fulfilment state of an order.
func (r *GORMOrderRepository) UpdateDeliveryStatus(orderID string, status models.OrderDeliveryStatus, deliveredPieces int, deliveryDate *time.Time) error {
	updates := map[string]interface{}{
		"order_delivery_status": status,
		"delivered_pieces":      deliveredPieces,
	}
	if deliveryDate != nil {
		updates["delivery_date"] = deliveryDate
	}
	res := r.db.Model(&models.Order{}).Where("order_id = ?", orderID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update delivery status for order %s: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for status update", orderID)
	}
	return nil
}

// RecordPayment overwrites the running payment total for an order.
func (r *GORMOrderRepository) RecordPayment(orderID string, newTotal decimal.Decimal) error {
	res := r.db.Model(&models.Order{}).Where("order_id = ?", orderID).
		Update("total_payment_received", newTotal)
	if res.Error != nil {
		return fmt.Errorf("failed to record payment for order %s: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for payment", orderID)
	}
	return nil
}
