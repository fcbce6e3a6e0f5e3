package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProdHealth describes the physical condition of a unit.
type ProdHealth string

const (
	ProdHealthWorking     ProdHealth = "working"
	ProdHealthMaintenance ProdHealth = "maintenance"
	ProdHealthExpired     ProdHealth = "expired"
)

// ProdStatus describes where a unit currently is in its lifecycle.
type ProdStatus string

const (
	ProdStatusAvailable         ProdStatus = "available"
	ProdStatusLeased            ProdStatus = "leased"
	ProdStatusSold              ProdStatus = "sold"
	ProdStatusLeasedNotWorking  ProdStatus = "leased but not working"
	ProdStatusLeasedMaintenance ProdStatus = "leased but maintenance"
	ProdStatusReturned          ProdStatus = "returned"
)

// OrderStatus marks whether a unit is free inventory or claimed by an order.
// A product can be attached to a new order only while it is INVENTORY.
type OrderStatus string

const (
	OrderStatusInventory OrderStatus = "INVENTORY"
	OrderStatusRent      OrderStatus = "RENT"
	OrderStatusPurchase  OrderStatus = "PURCHASE"
)

// ProductState is the set of tracked fields snapshotted into the audit trail.
// It is embedded both in Product and in AuditSnapshot so the two cannot
// drift apart.
type ProductState struct {
	Brand               string          `json:"brand" validate:"required,min=2,max=100"`
	Model               string          `json:"model" validate:"required,max=100"`
	ProductType         string          `json:"product_type" gorm:"type:varchar(50)" validate:"required,max=50"`
	Condition           string          `json:"condition" gorm:"type:varchar(50)"`
	CostPrice           decimal.Decimal `json:"cost_price" gorm:"type:decimal(12,2)"`
	Specifications      string          `json:"specifications" gorm:"type:text"`
	ProdID              string          `json:"prod_id" gorm:"type:varchar(64)"`
	ProdHealth          ProdHealth      `json:"prod_health" gorm:"type:varchar(20);default:working" validate:"omitempty,oneof=working maintenance expired"`
	ProdStatus          ProdStatus      `json:"prod_status" gorm:"type:varchar(30);default:available"`
	OrderStatus         OrderStatus     `json:"order_status" gorm:"type:varchar(20);default:INVENTORY" validate:"omitempty,oneof=INVENTORY RENT PURCHASE"`
	MaintenanceStatus   string          `json:"maintenance_status" gorm:"type:varchar(50)"`
	LastMaintenanceDate *time.Time      `json:"last_maintenance_date"`
}

// Product is one leased or sold unit of hardware.
type Product struct {
	AdsID           string `json:"ads_id" gorm:"primaryKey;type:varchar(64)"`
	ReferenceNumber string `json:"reference_number" gorm:"type:varchar(64);index"`
	ProductState    `gorm:"embedded"`
	CreatedBy       string    `json:"created_by" gorm:"type:varchar(100)"`
	CreatedAt       time.Time `json:"created_at"`
	LastModifiedBy  string    `json:"last_modified_by" gorm:"type:varchar(100)"`
	LastModifiedAt  time.Time `json:"last_modified_at"`
}

// Available reports whether the product can still be attached to a new order.
func (p *Product) Available() bool {
	return p.OrderStatus == OrderStatusInventory
}
