package repositories

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrDuplicateOrderID is returned when an order code collides with one
// already persisted. The unique index on orders.order_id is what surfaces
// it; callers may retry with a disambiguating suffix.
var ErrDuplicateOrderID = errors.New("order id already exists")

// ProductUnavailableError reports the products that were no longer INVENTORY
// at commit time. The whole transaction has been rolled back when this is
// returned.
type ProductUnavailableError struct {
	AdsIDs []string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("products no longer available: %s", strings.Join(e.AdsIDs, ", "))
}

// isDuplicateKey matches unique-constraint violations across the drivers we
// run against (pgx and sqlite word them differently).
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
