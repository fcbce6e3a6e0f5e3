package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"leasedesk/internal/handlers"
	"leasedesk/internal/middleware"
	"leasedesk/internal/models"
	"leasedesk/internal/repositories"
	"leasedesk/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp wires a full Fiber app against an in-memory SQLite database,
// without messaging or caching, mirroring the production wiring in main.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.AuditSnapshot{},
	))

	userRepo := repositories.NewGORMUserRepository(db)
	clientRepo := repositories.NewGORMClientRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	auditRepo := repositories.NewGORMAuditRepository(db)

	authService := services.NewAuthService(userRepo, "test_jwt_secret")
	clientService := services.NewClientService(clientRepo)
	productService := services.NewProductService(productRepo, nil, nil)
	orderService := services.NewOrderService(orderRepo, productRepo, nil, nil)
	historyService := services.NewHistoryService(auditRepo, nil)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(authService))
	handlers.NewClientHandler(clientService).RegisterRoutes(protected)
	handlers.NewProductHandler(productService, historyService).RegisterRoutes(protected)
	handlers.NewOrderHandler(orderService, clientService).RegisterRoutes(protected)

	return app
}

// request performs a JSON request against the test app.
func request(t *testing.T, app *fiber.App, method, path, token string, payload interface{}) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// loginOperator registers and logs in an operator, returning the token.
func loginOperator(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	resp := request(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp map[string]string
	decode(t, resp, &loginResp)
	require.NotEmpty(t, loginResp["token"])
	return loginResp["token"]
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestOrderSubmissionEndToEnd(t *testing.T) {
	app := setupApp(t)
	token := loginOperator(t, app, "flowuser")

	// Create the customer; the response carries the assigned code, so no
	// refetch is needed to select it.
	resp := request(t, app, http.MethodPost, "/api/v1/clients", token, map[string]interface{}{
		"name":       "Acme Computing",
		"email":      "it@acme.example",
		"pan_number": "ABCDE1234F",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var client models.Client
	decode(t, resp, &client)
	assert.Equal(t, "CUST000001", client.CustomerID)
	assert.Equal(t, "flowuser", client.CreatedBy)

	// Register two laptops into inventory.
	adsIDs := make([]string, 0, 2)
	for _, serial := range []string{"SN-100", "SN-200"} {
		resp = request(t, app, http.MethodPost, "/api/v1/products", token, map[string]interface{}{
			"brand":        "Dell",
			"model":        "Latitude 5440",
			"product_type": "laptop",
			"prod_id":      serial,
			"cost_price":   "52000",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var product models.Product
		decode(t, resp, &product)
		assert.Equal(t, models.OrderStatusInventory, product.OrderStatus)
		adsIDs = append(adsIDs, product.AdsID)
	}

	resp = request(t, app, http.MethodGet, "/api/v1/products/available", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var available []models.Product
	decode(t, resp, &available)
	assert.Len(t, available, 2)

	// Quote the purchase variant first: 1500 minus 10% is 1350.
	resp = request(t, app, http.MethodPost, "/api/v1/orders/quote", token, map[string]interface{}{
		"order_type":          "PURCHASE",
		"discount_percentage": "10",
		"items": []map[string]interface{}{
			{"ads_id": adsIDs[0], "price": "1000"},
			{"ads_id": adsIDs[1], "price": "500"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var quote services.OrderTotals
	decode(t, resp, &quote)
	assert.Equal(t, "1500.00", quote.Subtotal.StringFixed(2))
	assert.Equal(t, "150.00", quote.DiscountAmount.StringFixed(2))
	assert.Equal(t, "1350.00", quote.Total.StringFixed(2))

	// Submit as a rental with a 2000 deposit: total 3500.
	orderPayload := map[string]interface{}{
		"customer_id":      client.ID,
		"order_type":       "RENT",
		"contract_date":    "2025-06-01T00:00:00Z",
		"security_deposit": "2000",
		"items": []map[string]interface{}{
			{"ads_id": adsIDs[0], "price": "1000"},
			{"ads_id": adsIDs[1], "price": "500"},
		},
	}
	resp = request(t, app, http.MethodPost, "/api/v1/orders", token, orderPayload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order models.Order
	decode(t, resp, &order)
	assert.Equal(t, "ORD000001_"+order.CreatedAt.UTC().Format("20060102"), order.OrderID)
	assert.Equal(t, "3500.00", order.QuotedPrice.StringFixed(2))
	assert.Equal(t, "flowuser", order.CreatedBy)
	require.Len(t, order.Items, 2)
	require.NotNil(t, order.Items[0].RentalPricePerMonth)

	// Both units are now claimed, so nothing is left to order.
	resp = request(t, app, http.MethodGet, "/api/v1/products/available", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	available = nil
	decode(t, resp, &available)
	assert.Empty(t, available)

	// A second submission for the same product loses the race and commits
	// nothing.
	conflictPayload := map[string]interface{}{
		"customer_id":   client.ID,
		"order_type":    "PURCHASE",
		"contract_date": "2025-06-02T00:00:00Z",
		"items": []map[string]interface{}{
			{"ads_id": adsIDs[0], "price": "900"},
		},
	}
	resp = request(t, app, http.MethodPost, "/api/v1/orders", token, conflictPayload)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var conflict map[string]interface{}
	decode(t, resp, &conflict)
	assert.Contains(t, conflict["products"], adsIDs[0])

	resp = request(t, app, http.MethodGet, "/api/v1/orders", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []models.Order
	decode(t, resp, &orders)
	assert.Len(t, orders, 1)

	// The history trail for a claimed product shows the CREATED entry plus
	// exactly one UPDATED entry whose diff records the claim.
	resp = request(t, app, http.MethodGet, "/api/v1/products/"+adsIDs[0]+"/history", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history services.ProductHistory
	decode(t, resp, &history)
	require.Len(t, history.Snapshots, 2)
	assert.Equal(t, models.AuditActionCreated, history.Snapshots[0].Action)
	assert.Equal(t, models.AuditActionUpdated, history.Snapshots[1].Action)
	require.Len(t, history.Diffs, 1)
	changed := map[string]bool{}
	for _, change := range history.Diffs[0].Changes {
		changed[change.Field] = true
	}
	assert.True(t, changed["orderStatus"])
	assert.True(t, changed["prodStatus"])
}

func TestOrderValidationAndDuplicates(t *testing.T) {
	app := setupApp(t)
	token := loginOperator(t, app, "validator")

	resp := request(t, app, http.MethodPost, "/api/v1/clients", token, map[string]interface{}{
		"name": "Globex Rentals",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var client models.Client
	decode(t, resp, &client)

	resp = request(t, app, http.MethodPost, "/api/v1/products", token, map[string]interface{}{
		"brand":        "Lenovo",
		"model":        "ThinkPad T14",
		"product_type": "laptop",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var product models.Product
	decode(t, resp, &product)

	// The same product twice in one submission is rejected up front.
	resp = request(t, app, http.MethodPost, "/api/v1/orders", token, map[string]interface{}{
		"customer_id":   client.ID,
		"order_type":    "PURCHASE",
		"contract_date": "2025-06-01T00:00:00Z",
		"items": []map[string]interface{}{
			{"ads_id": product.AdsID, "price": "1000"},
			{"ads_id": product.AdsID, "price": "1000"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// A zero-price line fails validation with the specific reason, and no
	// order is created.
	resp = request(t, app, http.MethodPost, "/api/v1/orders", token, map[string]interface{}{
		"customer_id":   client.ID,
		"order_type":    "PURCHASE",
		"contract_date": "2025-06-01T00:00:00Z",
		"items": []map[string]interface{}{
			{"ads_id": product.AdsID, "price": "0"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var rejection map[string]interface{}
	decode(t, resp, &rejection)
	assert.Contains(t, rejection["error"], "greater than zero")

	resp = request(t, app, http.MethodGet, "/api/v1/orders", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []models.Order
	decode(t, resp, &orders)
	assert.Empty(t, orders)

	// The product is still available after the failed attempts.
	resp = request(t, app, http.MethodGet, "/api/v1/products/"+product.AdsID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Product
	decode(t, resp, &fetched)
	assert.Equal(t, models.OrderStatusInventory, fetched.OrderStatus)
}

func TestClientSearch(t *testing.T) {
	app := setupApp(t)
	token := loginOperator(t, app, "searcher")

	for _, payload := range []map[string]interface{}{
		{"name": "Acme Computing", "pan_number": "ABCDE1234F"},
		{"name": "Globex Rentals", "gst_number": "29GGGGG1314R9Z6"},
	} {
		resp := request(t, app, http.MethodPost, "/api/v1/clients", token, payload)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	cases := map[string]string{
		"Acme":       "Acme Computing",
		"ABCDE1234F": "Acme Computing",
		"29GGGGG":    "Globex Rentals",
		"CUST000002": "Globex Rentals",
	}
	for query, wantName := range cases {
		resp := request(t, app, http.MethodGet, "/api/v1/clients?q="+query, token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var clients []models.Client
		decode(t, resp, &clients)
		require.Len(t, clients, 1, "query %q", query)
		assert.Equal(t, wantName, clients[0].Name)
	}
}

func TestBusinessRoutesRequireAuth(t *testing.T) {
	app := setupApp(t)

	for _, path := range []string{"/api/v1/products", "/api/v1/clients", "/api/v1/orders"} {
		resp := request(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "path %s", path)
		resp.Body.Close()
	}
}
