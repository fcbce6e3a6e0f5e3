package services

import "errors"

// Validation failures of the order composition gate. Each rule fails with
// its own named error so the caller can tell the user exactly what to fix;
// none of these ever reaches the transaction boundary.
var (
	ErrNoCustomerSelected      = errors.New("no customer selected")
	ErrNoProductsSelected      = errors.New("no products selected")
	ErrNonPositivePrice        = errors.New("every product line must have a price greater than zero")
	ErrMissingContractDate     = errors.New("contract date is required")
	ErrDiscountOutOfRange      = errors.New("discount percentage must be between 0 and 100")
	ErrZeroSubtotal            = errors.New("purchase order subtotal must not be zero")
	ErrNegativeTotal           = errors.New("order total must not be negative")
	ErrNegativeSecurityDeposit = errors.New("security deposit must not be negative")
	ErrInvalidOrderType        = errors.New("order type must be RENT or PURCHASE")
	ErrInvalidDeliveryStatus   = errors.New("delivery status must be pending, in_transit, or delivered")
	ErrNonPositivePayment      = errors.New("payment amount must be greater than zero")
	ErrPaymentExceedsQuote     = errors.New("payment would exceed the quoted price")
)

var validationErrs = []error{
	ErrNoCustomerSelected,
	ErrNoProductsSelected,
	ErrNonPositivePrice,
	ErrMissingContractDate,
	ErrDiscountOutOfRange,
	ErrZeroSubtotal,
	ErrNegativeTotal,
	ErrNegativeSecurityDeposit,
	ErrInvalidOrderType,
	ErrInvalidDeliveryStatus,
	ErrNonPositivePayment,
	ErrPaymentExceedsQuote,
}

// IsValidationError reports whether err is a locally recoverable business
// validation failure, as opposed to a conflict or transport error.
func IsValidationError(err error) bool {
	for _, v := range validationErrs {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
