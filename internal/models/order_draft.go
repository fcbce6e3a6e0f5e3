package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DraftStage is how far an in-progress order composition has advanced.
// Stages are derived from what the draft already holds, not stored, so the
// draft can never claim to be further along than its contents allow.
type DraftStage string

const (
	StageSelectingCustomer  DraftStage = "selecting_customer"
	StageSelectingOrderType DraftStage = "selecting_order_type"
	StageSelectingProducts  DraftStage = "selecting_products"
	StageEnteringDetails    DraftStage = "entering_details"
	StageReviewing          DraftStage = "reviewing"
)

// ErrDuplicateLine is returned when a product already in the draft is added
// again. The draft is left unchanged.
var ErrDuplicateLine = errors.New("product is already part of this order")

// DraftLine is one product selected into a draft, with its agreed price.
type DraftLine struct {
	AdsID string          `json:"ads_id" validate:"required"`
	Price decimal.Decimal `json:"price"`
}

// OrderDraft is the value object threaded through the order composition
// workflow. All transitions return a new draft; abandoning a draft before
// submission leaves no persisted state behind.
type OrderDraft struct {
	Customer              *Client
	OrderType             OrderType
	Lines                 []DraftLine
	ContractDate          *time.Time
	EstimatedDeliveryDate *time.Time
	DeliveryDate          *time.Time
	DeliveryStatus        OrderDeliveryStatus
	DiscountPercentage    decimal.Decimal
	SecurityDeposit       decimal.Decimal
	RequiredPieces        int
}

// Stage reports the furthest step the draft has unlocked.
func (d OrderDraft) Stage() DraftStage {
	switch {
	case d.Customer == nil:
		return StageSelectingCustomer
	case !d.OrderType.Valid():
		return StageSelectingOrderType
	case len(d.Lines) == 0:
		return StageSelectingProducts
	case d.ContractDate == nil:
		return StageEnteringDetails
	default:
		return StageReviewing
	}
}

// WithCustomer selects (or replaces) the customer. Replacing the customer is
// the "change customer" backward transition; selected products survive it.
func (d OrderDraft) WithCustomer(c *Client) OrderDraft {
	d.Customer = c
	return d
}

// WithOrderType selects the order type.
func (d OrderDraft) WithOrderType(t OrderType) OrderDraft {
	d.OrderType = t
	return d
}

// AddLine appends a product line. Adding a product that is already selected
// is rejected with ErrDuplicateLine rather than silently ignored.
func (d OrderDraft) AddLine(line DraftLine) (OrderDraft, error) {
	for _, l := range d.Lines {
		if l.AdsID == line.AdsID {
			return d, ErrDuplicateLine
		}
	}
	lines := make([]DraftLine, len(d.Lines), len(d.Lines)+1)
	copy(lines, d.Lines)
	d.Lines = append(lines, line)
	return d, nil
}

// RemoveLine drops the line for the given product, if present.
func (d OrderDraft) RemoveLine(adsID string) OrderDraft {
	lines := make([]DraftLine, 0, len(d.Lines))
	for _, l := range d.Lines {
		if l.AdsID != adsID {
			lines = append(lines, l)
		}
	}
	d.Lines = lines
	return d
}

// WithDetails fills in the contract metadata collected on the details step.
func (d OrderDraft) WithDetails(contract time.Time, estimated, delivered *time.Time, status OrderDeliveryStatus) OrderDraft {
	d.ContractDate = &contract
	d.EstimatedDeliveryDate = estimated
	d.DeliveryDate = delivered
	if status == "" {
		status = DeliveryStatusPending
	}
	d.DeliveryStatus = status
	return d
}

// WithPricing sets the discount and, for rentals, the security deposit.
func (d OrderDraft) WithPricing(discountPct, securityDeposit decimal.Decimal) OrderDraft {
	d.DiscountPercentage = discountPct
	d.SecurityDeposit = securityDeposit
	return d
}
