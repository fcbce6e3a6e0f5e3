package services

import (
	"fmt"
	"time"
)

// GenerateOrderID derives the human-readable order code from the customer's
// sequential number and the submission date: ORD + zero-padded 6-digit
// customer number + "_" + YYYYMMDD in UTC. Deterministic for a given
// (customer, day); same-day repeat orders are disambiguated by the composer
// retrying with a numeric suffix when the unique index rejects the code.
func GenerateOrderID(customerNumber int, now time.Time) string {
	return fmt.Sprintf("ORD%06d_%s", customerNumber, now.UTC().Format("20060102"))
}
