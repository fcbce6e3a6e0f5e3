package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"leasedesk/internal/middleware"
	"leasedesk/internal/models"
	"leasedesk/internal/repositories"
	"leasedesk/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderService  *services.OrderService
	clientService *services.ClientService
	validate      *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService, clientService *services.ClientService) *OrderHandler {
	return &OrderHandler{
		orderService:  orderService,
		clientService: clientService,
		validate:      validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:orderId", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Post("/quote", h.HandleQuote)
	orderRoutes.Patch("/:orderId/delivery", h.HandleUpdateDeliveryStatus)
	orderRoutes.Post("/:orderId/payments", h.HandleRecordPayment)
}

// createOrderRequest is the submission payload built by the composition UI.
type createOrderRequest struct {
	CustomerID            string                     `json:"customer_id" validate:"required"`
	OrderType             models.OrderType           `json:"order_type" validate:"required,oneof=RENT PURCHASE"`
	Items                 []models.DraftLine         `json:"items" validate:"required,min=1,dive"`
	ContractDate          *time.Time                 `json:"contract_date" validate:"required"`
	EstimatedDeliveryDate *time.Time                 `json:"estimated_delivery_date"`
	DeliveryDate          *time.Time                 `json:"delivery_date"`
	OrderDeliveryStatus   models.OrderDeliveryStatus `json:"order_delivery_status"`
	DiscountPercentage    decimal.Decimal            `json:"discount_percentage"`
	SecurityDeposit       decimal.Decimal            `json:"security_deposit"`
	RequiredPieces        int                        `json:"required_pieces"`
}

// HandleGetOrders retrieves all orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.GetAllOrders()
	if err != nil {
		log.Printf("Error getting all orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its order code.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	order, err := h.orderService.GetOrderByID(orderID)
	if err != nil {
		log.Printf("Error getting order by ID %s: %v", orderID, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Order with ID %s not found", orderID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order",
			"error":   err.Error(),
		})
	}
	return c.JSON(order)
}

// HandleQuote computes the financial totals for a prospective order without
// persisting anything, for the review step of the composition workflow.
func (h *OrderHandler) HandleQuote(c *fiber.Ctx) error {
	var req struct {
		OrderType          models.OrderType   `json:"order_type" validate:"required,oneof=RENT PURCHASE"`
		Items              []models.DraftLine `json:"items" validate:"required,min=1,dive"`
		DiscountPercentage decimal.Decimal    `json:"discount_percentage"`
		SecurityDeposit    decimal.Decimal    `json:"security_deposit"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	totals := services.ComputeTotals(req.Items, req.DiscountPercentage, req.OrderType, req.SecurityDeposit).Rounded()
	return c.JSON(totals)
}

// HandleCreateOrder runs the full submission workflow: resolve the customer,
// compose the draft line by line, and submit. Duplicate product selections
// are rejected, validation failures come back with the specific rule that
// failed, and availability races surface as conflicts.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing order request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	client, err := h.clientService.GetClientByID(req.CustomerID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Client with ID %s not found", req.CustomerID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not resolve customer",
			"error":   err.Error(),
		})
	}

	draft := models.OrderDraft{}.
		WithCustomer(client).
		WithOrderType(req.OrderType)
	for _, line := range req.Items {
		draft, err = draft.AddLine(line)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": fmt.Sprintf("Product %s is selected more than once", line.AdsID),
				"error":   err.Error(),
			})
		}
	}
	draft = draft.
		WithDetails(*req.ContractDate, req.EstimatedDeliveryDate, req.DeliveryDate, req.OrderDeliveryStatus).
		WithPricing(req.DiscountPercentage, req.SecurityDeposit)
	draft.RequiredPieces = req.RequiredPieces

	order, err := h.orderService.SubmitOrder(draft, middleware.Actor(c))
	if err != nil {
		return h.respondSubmitError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// respondSubmitError maps the submission error taxonomy onto HTTP statuses:
// validation 400, conflicts 409, unknown products 404, everything else 500.
func (h *OrderHandler) respondSubmitError(c *fiber.Ctx, err error) error {
	log.Printf("Error creating order: %v", err)

	if services.IsValidationError(err) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Order validation failed",
			"error":   err.Error(),
		})
	}

	var unavailable *repositories.ProductUnavailableError
	if errors.As(err, &unavailable) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":  "One or more products are no longer available",
			"products": unavailable.AdsIDs,
		})
	}
	if errors.Is(err, repositories.ErrDuplicateOrderID) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Order ID collision, please retry the submission",
			"error":   err.Error(),
		})
	}
	if strings.Contains(err.Error(), "not found") {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "A selected product does not exist",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Could not create order",
		"error":   err.Error(),
	})
}

// HandleUpdateDeliveryStatus advances the fulfilment state of an order.
func (h *OrderHandler) HandleUpdateDeliveryStatus(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	var req struct {
		Status          models.OrderDeliveryStatus `json:"status"`
		DeliveredPieces int                        `json:"delivered_pieces"`
		DeliveryDate    *time.Time                 `json:"delivery_date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.orderService.UpdateDeliveryStatus(orderID, req.Status, req.DeliveredPieces, req.DeliveryDate); err != nil {
		log.Printf("Error updating delivery status for order %s: %v", orderID, err)
		if services.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid delivery status",
				"error":   err.Error(),
			})
		}
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Order with ID %s not found", orderID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update delivery status",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s delivery status updated to %s", orderID, req.Status),
	})
}

// HandleRecordPayment adds a received payment to an order.
func (h *OrderHandler) HandleRecordPayment(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	order, err := h.orderService.RecordPayment(orderID, req.Amount)
	if err != nil {
		log.Printf("Error recording payment for order %s: %v", orderID, err)
		if services.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Payment rejected",
				"error":   err.Error(),
			})
		}
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Order with ID %s not found", orderID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not record payment",
			"error":   err.Error(),
		})
	}
	return c.JSON(order)
}
