package repositories

import (
	"time"

	"leasedesk/internal/models"

	"github.com/shopspring/decimal"
)

// OrderRepository defines the interface for order data access.
//
// CreateOrder is the atomic unit of work behind order submission: within one
// transaction it inserts the order row, one item row per product, claims
// every product (re-checking that it is still INVENTORY at commit time), and
// appends an UPDATED audit snapshot per product. Any failure rolls the whole
// thing back; a lost availability race surfaces as *ProductUnavailableError
// and a colliding order code as ErrDuplicateOrderID.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByOrderID(orderID string) (*models.Order, error)
	CreateOrder(order *models.Order) error
	UpdateDeliveryStatus(orderID string, status models.OrderDeliveryStatus, deliveredPieces int, deliveryDate *time.Time) error
	RecordPayment(orderID string, newTotal decimal.Decimal) error
}
