package handlers

import (
	"fmt"
	"log"
	"strings"

	"leasedesk/internal/middleware"
	"leasedesk/internal/models"
	"leasedesk/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the product inventory, including
// the audit-trail history view.
type ProductHandler struct {
	service        *services.ProductService
	historyService *services.HistoryService
	validate       *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, historyService *services.HistoryService) *ProductHandler {
	return &ProductHandler{
		service:        service,
		historyService: historyService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/available", h.HandleGetAvailableProducts)
	productRoutes.Get("/:adsId", h.HandleGetProductByAdsID)
	productRoutes.Get("/:adsId/history", h.HandleGetProductHistory)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:adsId", h.HandleUpdateProduct)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
			"error":   err.Error(),
		})
	}
	return c.JSON(products)
}

// HandleGetAvailableProducts retrieves the subset of inventory that can be
// attached to a new order.
func (h *ProductHandler) HandleGetAvailableProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAvailableProducts()
	if err != nil {
		log.Printf("Error getting available products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve available products",
			"error":   err.Error(),
		})
	}
	return c.JSON(products)
}

// HandleGetProductByAdsID retrieves a single product.
func (h *ProductHandler) HandleGetProductByAdsID(c *fiber.Ctx) error {
	adsID := c.Params("adsId")
	product, err := h.service.GetProductByAdsID(adsID)
	if err != nil {
		log.Printf("Error getting product %s: %v", adsID, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Product with ADS ID %s not found", adsID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve product",
			"error":   err.Error(),
		})
	}
	return c.JSON(product)
}

// HandleGetProductHistory returns the reconstructed audit history for one
// product: the ordered snapshots plus the field-level diff per entry.
func (h *ProductHandler) HandleGetProductHistory(c *fiber.Ctx) error {
	adsID := c.Params("adsId")
	history, err := h.historyService.GetProductHistory(c.Context(), adsID)
	if err != nil {
		log.Printf("Error getting history for product %s: %v", adsID, err)
		if strings.Contains(err.Error(), "no history found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("No history found for product %s", adsID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve product history",
			"error":   err.Error(),
		})
	}
	return c.JSON(history)
}

// HandleCreateProduct registers a new unit in inventory.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(product); err != nil {
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

	if err := h.service.CreateProduct(&product, middleware.Actor(c)); err != nil {
		log.Printf("Error creating product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create product",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct saves edits to a unit and appends an audit snapshot.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	adsID := c.Params("adsId")
	existing, err := h.service.GetProductByAdsID(adsID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Product with ADS ID %s not found", adsID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve product",
			"error":   err.Error(),
		})
	}

	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	// Identity and provenance are immutable; order status only moves
	// through order submission.
	product.AdsID = existing.AdsID
	product.CreatedBy = existing.CreatedBy
	product.CreatedAt = existing.CreatedAt
	product.OrderStatus = existing.OrderStatus

	if err := h.validate.Struct(product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	if err := h.service.UpdateProduct(&product, middleware.Actor(c)); err != nil {
		log.Printf("Error updating product %s: %v", adsID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update product",
			"error":   err.Error(),
		})
	}
	return c.JSON(product)
}
