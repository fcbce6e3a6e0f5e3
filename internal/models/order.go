package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderType distinguishes a one-time sale from a recurring rental.
type OrderType string

const (
	OrderTypeRent     OrderType = "RENT"
	OrderTypePurchase OrderType = "PURCHASE"
)

// Valid reports whether t is one of the two known order types.
func (t OrderType) Valid() bool {
	return t == OrderTypeRent || t == OrderTypePurchase
}

// OrderDeliveryStatus tracks fulfilment of an order.
type OrderDeliveryStatus string

const (
	DeliveryStatusPending   OrderDeliveryStatus = "pending"
	DeliveryStatusInTransit OrderDeliveryStatus = "in_transit"
	DeliveryStatusDelivered OrderDeliveryStatus = "delivered"
)

// OrderItem is one product line within an order, carrying the price agreed
// at submission time. Its existence is derived from the owning Order.
type OrderItem struct {
	ID                  uint             `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID             string           `json:"order_id" gorm:"index;type:varchar(36)"`
	AdsID               string           `json:"ads_id" gorm:"type:varchar(64);index"`
	SellingPrice        decimal.Decimal  `json:"selling_price" gorm:"type:decimal(12,2)"`
	RentalPricePerMonth *decimal.Decimal `json:"rental_price_per_month,omitempty" gorm:"type:decimal(12,2)"`
	CreatedAt           time.Time        `json:"created_at"`
}

// Order is a persisted purchase or rental, immutable after creation except
// for delivery progress and received payments.
type Order struct {
	ID                    string              `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID               string              `json:"order_id" gorm:"uniqueIndex;type:varchar(32)"`
	CustomerID            string              `json:"customer_id" gorm:"type:varchar(36);index"`
	OrderType             OrderType           `json:"order_type" gorm:"type:varchar(10)"`
	RequiredPieces        int                 `json:"required_pieces"`
	DeliveredPieces       int                 `json:"delivered_pieces"`
	ContractDate          time.Time           `json:"contract_date"`
	EstimatedDeliveryDate *time.Time          `json:"estimated_delivery_date,omitempty"`
	DeliveryDate          *time.Time          `json:"delivery_date,omitempty"`
	OrderDeliveryStatus   OrderDeliveryStatus `json:"order_delivery_status" gorm:"type:varchar(20);default:pending"`
	DiscountPercentage    decimal.Decimal     `json:"discount_percentage" gorm:"type:decimal(5,2)"`
	SecurityDeposit       decimal.Decimal     `json:"security_deposit" gorm:"type:decimal(12,2)"`
	TotalPaymentReceived  decimal.Decimal     `json:"total_payment_received" gorm:"type:decimal(12,2)"`
	QuotedPrice           decimal.Decimal     `json:"quoted_price" gorm:"type:decimal(12,2)"`
	CreatedBy             string              `json:"created_by" gorm:"type:varchar(100)"`
	CreatedAt             time.Time           `json:"created_at"`
	Items                 []OrderItem         `json:"items" gorm:"foreignKey:OrderID;references:ID"`
}
