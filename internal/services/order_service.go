package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"leasedesk/internal/models"
	"leasedesk/internal/repositories"

	"github.com/shopspring/decimal"
)

// maxOrderIDAttempts bounds the same-customer-same-day suffix retry when the
// unique index rejects a generated order code.
const maxOrderIDAttempts = 5

// OrderService drives the order composition workflow: it validates the
// draft, derives the totals and order code, and hands the built order to the
// repository for atomic persistence.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	publisher   EventPublisher
	trailCache  TrailCache
}

// NewOrderService creates a new OrderService. Publisher and cache may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, publisher EventPublisher, trailCache TrailCache) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
		trailCache:  trailCache,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByID retrieves a single order by its order code.
func (s *OrderService) GetOrderByID(orderID string) (*models.Order, error) {
	return s.orderRepo.GetByOrderID(orderID)
}

// ValidateDraft is the gate in front of submission. Every rule fails with
// its own named error; a draft that passes is safe to price and persist.
func (s *OrderService) ValidateDraft(draft models.OrderDraft) error {
	if draft.Customer == nil {
		return ErrNoCustomerSelected
	}
	if !draft.OrderType.Valid() {
		return ErrInvalidOrderType
	}
	if len(draft.Lines) == 0 {
		return ErrNoProductsSelected
	}
	for _, line := range draft.Lines {
		if !line.Price.IsPositive() {
			return fmt.Errorf("product %s: %w", line.AdsID, ErrNonPositivePrice)
		}
	}
	if draft.ContractDate == nil {
		return ErrMissingContractDate
	}
	if draft.DiscountPercentage.IsNegative() || draft.DiscountPercentage.GreaterThan(oneHundred) {
		return ErrDiscountOutOfRange
	}
	if draft.OrderType == models.OrderTypeRent && draft.SecurityDeposit.IsNegative() {
		return ErrNegativeSecurityDeposit
	}
	totals := ComputeTotals(draft.Lines, draft.DiscountPercentage, draft.OrderType, draft.SecurityDeposit)
	if draft.OrderType == models.OrderTypePurchase {
		if totals.Subtotal.IsZero() {
			return ErrZeroSubtotal
		}
		if totals.Total.IsNegative() {
			return ErrNegativeTotal
		}
	}
	return nil
}

// SubmitOrder validates the draft, builds the order with its derived totals
// and generated code, and persists it atomically. On success it publishes an
// order.created event and invalidates the cached history of every claimed
// product; both side effects are best-effort and never fail the submission.
// Transport failures are surfaced as-is and never retried here.
func (s *OrderService) SubmitOrder(draft models.OrderDraft, actor string) (*models.Order, error) {
	if err := s.ValidateDraft(draft); err != nil {
		return nil, err
	}

	// Selection-time availability check. The authoritative re-check happens
	// inside the persistence transaction; this one just fails fast.
	for _, line := range draft.Lines {
		product, err := s.productRepo.GetByAdsID(line.AdsID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", line.AdsID, err)
		}
		if !product.Available() {
			return nil, &repositories.ProductUnavailableError{AdsIDs: []string{line.AdsID}}
		}
	}

	deposit := decimal.Zero
	if draft.OrderType == models.OrderTypeRent {
		deposit = draft.SecurityDeposit
	}
	totals := ComputeTotals(draft.Lines, draft.DiscountPercentage, draft.OrderType, deposit).Rounded()

	now := time.Now()
	baseOrderID := GenerateOrderID(draft.Customer.CustomerNumber, now)
	requiredPieces := draft.RequiredPieces
	if requiredPieces == 0 {
		requiredPieces = len(draft.Lines)
	}
	deliveryStatus := draft.DeliveryStatus
	if deliveryStatus == "" {
		deliveryStatus = models.DeliveryStatusPending
	}

	var order *models.Order
	for attempt := 1; ; attempt++ {
		orderID := baseOrderID
		if attempt > 1 {
			orderID = fmt.Sprintf("%s_%d", baseOrderID, attempt)
		}
		order = &models.Order{
			OrderID:               orderID,
			CustomerID:            draft.Customer.ID,
			OrderType:             draft.OrderType,
			RequiredPieces:        requiredPieces,
			ContractDate:          *draft.ContractDate,
			EstimatedDeliveryDate: draft.EstimatedDeliveryDate,
			DeliveryDate:          draft.DeliveryDate,
			OrderDeliveryStatus:   deliveryStatus,
			DiscountPercentage:    draft.DiscountPercentage.Round(2),
			SecurityDeposit:       deposit.Round(2),
			TotalPaymentReceived:  decimal.Zero,
			QuotedPrice:           totals.Total,
			CreatedBy:             actor,
			CreatedAt:             now,
			Items:                 buildItems(draft),
		}
		err := s.orderRepo.CreateOrder(order)
		if err == nil {
			break
		}
		if errors.Is(err, repositories.ErrDuplicateOrderID) && attempt < maxOrderIDAttempts {
			continue
		}
		return nil, err
	}

	s.publishOrderCreated(order)
	s.invalidateTrails(order)
	return order, nil
}

// buildItems turns draft lines into order item rows. The agreed price is
// always stored as the selling price and additionally as the monthly rental
// price for RENT orders.
func buildItems(draft models.OrderDraft) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(draft.Lines))
	for _, line := range draft.Lines {
		price := line.Price.Round(2)
		item := models.OrderItem{
			AdsID:        line.AdsID,
			SellingPrice: price,
		}
		if draft.OrderType == models.OrderTypeRent {
			rent := price
			item.RentalPricePerMonth = &rent
		}
		items = append(items, item)
	}
	return items
}

func (s *OrderService) publishOrderCreated(order *models.Order) {
	if s.publisher == nil {
		return
	}
	event := map[string]interface{}{
		"order_id":     order.OrderID,
		"customer_id":  order.CustomerID,
		"order_type":   order.OrderType,
		"quoted_price": order.QuotedPrice,
		"items":        len(order.Items),
		"created_by":   order.CreatedBy,
	}
	if err := s.publisher.PublishJSON("order.created", event); err != nil {
		log.Printf("Warning: failed to publish order created event for order %s: %v", order.OrderID, err)
	}
}

func (s *OrderService) invalidateTrails(order *models.Order) {
	if s.trailCache == nil {
		return
	}
	adsIDs := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		adsIDs = append(adsIDs, item.AdsID)
	}
	if err := s.trailCache.Invalidate(context.Background(), adsIDs...); err != nil {
		log.Printf("Warning: failed to invalidate history cache after order %s: %v", order.OrderID, err)
	}
}

// UpdateDeliveryStatus advances the fulfilment state of an order.
func (s *OrderService) UpdateDeliveryStatus(orderID string, status models.OrderDeliveryStatus, deliveredPieces int, deliveryDate *time.Time) error {
	switch status {
	case models.DeliveryStatusPending, models.DeliveryStatusInTransit, models.DeliveryStatusDelivered:
	default:
		return ErrInvalidDeliveryStatus
	}
	if err := s.orderRepo.UpdateDeliveryStatus(orderID, status, deliveredPieces, deliveryDate); err != nil {
		return fmt.Errorf("failed to update delivery status for order %s: %w", orderID, err)
	}
	return nil
}

// RecordPayment adds a received payment to an order's running total. The
// accumulated total may never exceed the quoted price.
func (s *OrderService) RecordPayment(orderID string, amount decimal.Decimal) (*models.Order, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositivePayment
	}
	order, err := s.orderRepo.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	newTotal := order.TotalPaymentReceived.Add(amount).Round(2)
	if newTotal.GreaterThan(order.QuotedPrice) {
		return nil, ErrPaymentExceedsQuote
	}
	if err := s.orderRepo.RecordPayment(orderID, newTotal); err != nil {
		return nil, err
	}
	order.TotalPaymentReceived = newTotal
	return order, nil
}
