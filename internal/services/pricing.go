package services

import (
	"leasedesk/internal/models"

	"github.com/shopspring/decimal"
)

// OrderTotals is the derived financial summary of a set of order lines.
type OrderTotals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

var oneHundred = decimal.NewFromInt(100)

// ComputeTotals derives subtotal, discount amount, and total payable for the
// given lines. The security deposit is added only for rentals. The function
// is pure and carries full decimal precision; business guards (non-zero
// purchase subtotal, non-negative total) belong to ValidateDraft, and
// rounding to two places happens at the persistence boundary via Rounded.
func ComputeTotals(lines []models.DraftLine, discountPct decimal.Decimal, orderType models.OrderType, securityDeposit decimal.Decimal) OrderTotals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Price)
	}
	discount := subtotal.Mul(discountPct).Div(oneHundred)
	total := subtotal.Sub(discount)
	if orderType == models.OrderTypeRent {
		total = total.Add(securityDeposit)
	}
	return OrderTotals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          total,
	}
}

// Rounded returns the totals rounded half-up to two decimal places.
func (t OrderTotals) Rounded() OrderTotals {
	return OrderTotals{
		Subtotal:       t.Subtotal.Round(2),
		DiscountAmount: t.DiscountAmount.Round(2),
		Total:          t.Total.Round(2),
	}
}
