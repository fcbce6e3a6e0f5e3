package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"leasedesk/internal/models"
	"leasedesk/internal/repositories"
	"leasedesk/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetAll() ([]models.Order, error) {
	args := m.Called()
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByOrderID(orderID string) (*models.Order, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateDeliveryStatus(orderID string, status models.OrderDeliveryStatus, deliveredPieces int, deliveryDate *time.Time) error {
	args := m.Called(orderID, status, deliveredPieces, deliveryDate)
	return args.Error(0)
}

func (m *MockOrderRepository) RecordPayment(orderID string, newTotal decimal.Decimal) error {
	args := m.Called(orderID, newTotal)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetAvailable() ([]models.Product, error) {
	args := m.Called()
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByAdsID(adsID string) (*models.Product, error) {
	args := m.Called(adsID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(eventType string, payload interface{}) error {
	args := m.Called(eventType, payload)
	return args.Error(0)
}

// recordingTrailCache is an in-memory services.TrailCache.
type recordingTrailCache struct {
	entries     map[string][]byte
	invalidated []string
}

func newRecordingTrailCache() *recordingTrailCache {
	return &recordingTrailCache{entries: make(map[string][]byte)}
}

func (c *recordingTrailCache) Get(_ context.Context, adsID string) ([]byte, bool, error) {
	payload, ok := c.entries[adsID]
	return payload, ok, nil
}

func (c *recordingTrailCache) Set(_ context.Context, adsID string, payload []byte) error {
	c.entries[adsID] = payload
	return nil
}

func (c *recordingTrailCache) Invalidate(_ context.Context, adsIDs ...string) error {
	for _, adsID := range adsIDs {
		delete(c.entries, adsID)
		c.invalidated = append(c.invalidated, adsID)
	}
	return nil
}

func availableProduct(adsID string) *models.Product {
	return &models.Product{
		AdsID: adsID,
		ProductState: models.ProductState{
			Brand:       "Dell",
			Model:       "Latitude 5440",
			ProductType: "laptop",
			ProdHealth:  models.ProdHealthWorking,
			ProdStatus:  models.ProdStatusAvailable,
			OrderStatus: models.OrderStatusInventory,
		},
	}
}

func validDraft(orderType models.OrderType) models.OrderDraft {
	contract := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	draft := models.OrderDraft{}.
		WithCustomer(&models.Client{ID: "client-1", CustomerNumber: 42}).
		WithOrderType(orderType)
	draft, _ = draft.AddLine(models.DraftLine{AdsID: "ADS-1", Price: decimal.NewFromInt(1000)})
	draft, _ = draft.AddLine(models.DraftLine{AdsID: "ADS-2", Price: decimal.NewFromInt(500)})
	draft = draft.WithDetails(contract, nil, nil, "")
	if orderType == models.OrderTypeRent {
		draft = draft.WithPricing(decimal.Zero, decimal.NewFromInt(2000))
	} else {
		draft = draft.WithPricing(decimal.NewFromInt(10), decimal.Zero)
	}
	return draft
}

func TestValidateDraft_NamedReasons(t *testing.T) {
	service := services.NewOrderService(new(MockOrderRepository), new(MockProductRepository), nil, nil)

	cases := []struct {
		name    string
		mutate  func(models.OrderDraft) models.OrderDraft
		wantErr error
	}{
		{"no customer", func(d models.OrderDraft) models.OrderDraft {
			d.Customer = nil
			return d
		}, services.ErrNoCustomerSelected},
		{"bad order type", func(d models.OrderDraft) models.OrderDraft {
			d.OrderType = "LEASE-TO-OWN"
			return d
		}, services.ErrInvalidOrderType},
		{"no products", func(d models.OrderDraft) models.OrderDraft {
			d.Lines = nil
			return d
		}, services.ErrNoProductsSelected},
		{"zero price line", func(d models.OrderDraft) models.OrderDraft {
			d.Lines[0].Price = decimal.Zero
			return d
		}, services.ErrNonPositivePrice},
		{"missing contract date", func(d models.OrderDraft) models.OrderDraft {
			d.ContractDate = nil
			return d
		}, services.ErrMissingContractDate},
		{"discount above 100", func(d models.OrderDraft) models.OrderDraft {
			d.DiscountPercentage = decimal.NewFromInt(101)
			return d
		}, services.ErrDiscountOutOfRange},
		{"negative discount", func(d models.OrderDraft) models.OrderDraft {
			d.DiscountPercentage = decimal.NewFromInt(-1)
			return d
		}, services.ErrDiscountOutOfRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := service.ValidateDraft(tc.mutate(validDraft(models.OrderTypePurchase)))
			assert.ErrorIs(t, err, tc.wantErr)
			assert.True(t, services.IsValidationError(err))
		})
	}
}

func TestValidateDraft_NegativeDepositOnRent(t *testing.T) {
	service := services.NewOrderService(new(MockOrderRepository), new(MockProductRepository), nil, nil)
	draft := validDraft(models.OrderTypeRent).WithPricing(decimal.Zero, decimal.NewFromInt(-1))
	assert.ErrorIs(t, service.ValidateDraft(draft), services.ErrNegativeSecurityDeposit)
}

func TestValidateDraft_ValidDraftPasses(t *testing.T) {
	service := services.NewOrderService(new(MockOrderRepository), new(MockProductRepository), nil, nil)
	assert.NoError(t, service.ValidateDraft(validDraft(models.OrderTypePurchase)))
	assert.NoError(t, service.ValidateDraft(validDraft(models.OrderTypeRent)))
}

func TestSubmitOrder_Purchase(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	publisher := new(MockPublisher)
	cache := newRecordingTrailCache()
	service := services.NewOrderService(orderRepo, productRepo, publisher, cache)

	productRepo.On("GetByAdsID", "ADS-1").Return(availableProduct("ADS-1"), nil).Once()
	productRepo.On("GetByAdsID", "ADS-2").Return(availableProduct("ADS-2"), nil).Once()

	var created *models.Order
	orderRepo.On("CreateOrder", mock.AnythingOfType("*models.Order")).
		Run(func(args mock.Arguments) { created = args.Get(0).(*models.Order) }).
		Return(nil).Once()
	publisher.On("PublishJSON", "order.created", mock.Anything).Return(nil).Once()

	order, err := service.SubmitOrder(validDraft(models.OrderTypePurchase), "alice")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Same(t, created, order)

	assert.True(t, strings.HasPrefix(order.OrderID, "ORD000042_"), "order id was %s", order.OrderID)
	assert.Equal(t, "client-1", order.CustomerID)
	assert.Equal(t, models.OrderTypePurchase, order.OrderType)
	assert.Equal(t, "alice", order.CreatedBy)
	assert.Equal(t, "1350.00", order.QuotedPrice.StringFixed(2))
	assert.Equal(t, "0.00", order.SecurityDeposit.StringFixed(2))
	assert.Equal(t, 2, order.RequiredPieces)

	require.Len(t, order.Items, 2)
	assert.Equal(t, "1000.00", order.Items[0].SellingPrice.StringFixed(2))
	assert.Nil(t, order.Items[0].RentalPricePerMonth)

	assert.ElementsMatch(t, []string{"ADS-1", "ADS-2"}, cache.invalidated)
	orderRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestSubmitOrder_RentCarriesDepositAndRentalPrice(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := services.NewOrderService(orderRepo, productRepo, nil, nil)

	productRepo.On("GetByAdsID", mock.Anything).Return(availableProduct("ADS-1"), nil)
	orderRepo.On("CreateOrder", mock.AnythingOfType("*models.Order")).Return(nil).Once()

	order, err := service.SubmitOrder(validDraft(models.OrderTypeRent), "bob")
	require.NoError(t, err)

	assert.Equal(t, "3500.00", order.QuotedPrice.StringFixed(2))
	assert.Equal(t, "2000.00", order.SecurityDeposit.StringFixed(2))
	require.Len(t, order.Items, 2)
	require.NotNil(t, order.Items[0].RentalPricePerMonth)
	assert.Equal(t, "1000.00", order.Items[0].RentalPricePerMonth.StringFixed(2))
	assert.Equal(t, "1000.00", order.Items[0].SellingPrice.StringFixed(2))
}

func TestSubmitOrder_ValidationFailureSkipsRepositories(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := services.NewOrderService(orderRepo, productRepo, nil, nil)

	draft := validDraft(models.OrderTypePurchase)
	draft.Customer = nil
	_, err := service.SubmitOrder(draft, "alice")

	assert.ErrorIs(t, err, services.ErrNoCustomerSelected)
	orderRepo.AssertNotCalled(t, "CreateOrder", mock.Anything)
	productRepo.AssertNotCalled(t, "GetByAdsID", mock.Anything)
}

func TestSubmitOrder_UnavailableAtSelectionTime(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := services.NewOrderService(orderRepo, productRepo, nil, nil)

	claimed := availableProduct("ADS-1")
	claimed.OrderStatus = models.OrderStatusRent
	productRepo.On("GetByAdsID", "ADS-1").Return(claimed, nil).Once()

	_, err := service.SubmitOrder(validDraft(models.OrderTypePurchase), "alice")

	var unavailable *repositories.ProductUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"ADS-1"}, unavailable.AdsIDs)
	orderRepo.AssertNotCalled(t, "CreateOrder", mock.Anything)
}

func TestSubmitOrder_CommitTimeConflictSurfaces(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := services.NewOrderService(orderRepo, productRepo, nil, nil)

	productRepo.On("GetByAdsID", mock.Anything).Return(availableProduct("ADS-1"), nil)
	orderRepo.On("CreateOrder", mock.AnythingOfType("*models.Order")).
		Return(&repositories.ProductUnavailableError{AdsIDs: []string{"ADS-2"}}).Once()

	_, err := service.SubmitOrder(validDraft(models.OrderTypePurchase), "alice")

	var unavailable *repositories.ProductUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"ADS-2"}, unavailable.AdsIDs)
}

func TestSubmitOrder_RetriesDuplicateOrderIDWithSuffix(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := services.NewOrderService(orderRepo, productRepo, nil, nil)

	productRepo.On("GetByAdsID", mock.Anything).Return(availableProduct("ADS-1"), nil)

	var orderIDs []string
	orderRepo.On("CreateOrder", mock.AnythingOfType("*models.Order")).
		Run(func(args mock.Arguments) { orderIDs = append(orderIDs, args.Get(0).(*models.Order).OrderID) }).
		Return(repositories.ErrDuplicateOrderID).Once()
	orderRepo.On("CreateOrder", mock.AnythingOfType("*models.Order")).
		Run(func(args mock.Arguments) { orderIDs = append(orderIDs, args.Get(0).(*models.Order).OrderID) }).
		Return(nil).Once()

	order, err := service.SubmitOrder(validDraft(models.OrderTypePurchase), "alice")
	require.NoError(t, err)

	require.Len(t, orderIDs, 2)
	assert.Equal(t, orderIDs[0]+"_2", orderIDs[1])
	assert.Equal(t, orderIDs[1], order.OrderID)
}

func TestSubmitOrder_TransportErrorSurfacesVerbatim(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := services.NewOrderService(orderRepo, productRepo, nil, nil)

	productRepo.On("GetByAdsID", mock.Anything).Return(availableProduct("ADS-1"), nil)
	orderRepo.On("CreateOrder", mock.AnythingOfType("*models.Order")).
		Return(fmt.Errorf("connection refused")).Once()

	_, err := service.SubmitOrder(validDraft(models.OrderTypePurchase), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	// No auto-retry: exactly one attempt.
	orderRepo.AssertNumberOfCalls(t, "CreateOrder", 1)
}

func TestRecordPayment(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	service := services.NewOrderService(orderRepo, new(MockProductRepository), nil, nil)

	stored := &models.Order{
		OrderID:              "ORD000001_20250601",
		QuotedPrice:          decimal.NewFromInt(1000),
		TotalPaymentReceived: decimal.NewFromInt(800),
	}
	orderRepo.On("GetByOrderID", stored.OrderID).Return(stored, nil)

	// Exceeding the quote is rejected before any write.
	_, err := service.RecordPayment(stored.OrderID, decimal.NewFromInt(300))
	assert.ErrorIs(t, err, services.ErrPaymentExceedsQuote)
	orderRepo.AssertNotCalled(t, "RecordPayment", mock.Anything, mock.Anything)

	// A payment that lands exactly on the quote is fine.
	orderRepo.On("RecordPayment", stored.OrderID, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(1000))
	})).Return(nil).Once()
	updated, err := service.RecordPayment(stored.OrderID, decimal.NewFromInt(200))
	require.NoError(t, err)
	assert.Equal(t, "1000.00", updated.TotalPaymentReceived.StringFixed(2))

	// Non-positive amounts never reach the repository.
	_, err = service.RecordPayment(stored.OrderID, decimal.Zero)
	assert.ErrorIs(t, err, services.ErrNonPositivePayment)
}

func TestUpdateDeliveryStatus_RejectsUnknownStatus(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	service := services.NewOrderService(orderRepo, new(MockProductRepository), nil, nil)

	err := service.UpdateDeliveryStatus("ORD000001_20250601", "teleported", 1, nil)
	assert.ErrorIs(t, err, services.ErrInvalidDeliveryStatus)
	orderRepo.AssertNotCalled(t, "UpdateDeliveryStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
