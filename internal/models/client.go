package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is a customer of the leasing business.
// Clients are never hard-deleted; edits overwrite in place.
type Client struct {
	ID                 string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	CustomerNumber     int             `json:"customer_number" gorm:"uniqueIndex"`
	CustomerID         string          `json:"customer_id" gorm:"uniqueIndex;type:varchar(20)"`
	Name               string          `json:"name" validate:"required,min=2,max=100"`
	Email              string          `json:"email" gorm:"type:varchar(255)" validate:"omitempty,email"`
	Phone              string          `json:"phone" gorm:"type:varchar(20)"`
	Company            string          `json:"company" gorm:"type:varchar(100)"`
	GSTNumber          string          `json:"gst_number" gorm:"type:varchar(20);index"`
	PANNumber          string          `json:"pan_number" gorm:"type:varchar(20);index"`
	AddressLine1       string          `json:"address_line1" gorm:"type:varchar(255)"`
	AddressLine2       string          `json:"address_line2" gorm:"type:varchar(255)"`
	City               string          `json:"city" gorm:"type:varchar(100)"`
	State              string          `json:"state" gorm:"type:varchar(100)"`
	PostalCode         string          `json:"postal_code" gorm:"type:varchar(20)"`
	TotalSecurityMoney decimal.Decimal `json:"total_security_money" gorm:"type:decimal(12,2)"`
	CreatedBy          string          `json:"created_by" gorm:"type:varchar(100)"`
	CreatedAt          time.Time       `json:"created_at"`
	LastModifiedBy     string          `json:"last_modified_by" gorm:"type:varchar(100)"`
	LastModifiedAt     time.Time       `json:"last_modified_at"`
}
