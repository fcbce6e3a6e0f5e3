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

// ClientHandler handles HTTP requests for the client directory.
type ClientHandler struct {
	service  *services.ClientService
	validate *validator.Validate
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(service *services.ClientService) *ClientHandler {
	return &ClientHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the client routes with the Fiber app.
func (h *ClientHandler) RegisterRoutes(router fiber.Router) {
	clientRoutes := router.Group("/clients")
	clientRoutes.Get("/", h.HandleGetClients)
	clientRoutes.Get("/:id", h.HandleGetClientByID)
	clientRoutes.Post("/", h.HandleCreateClient)
	clientRoutes.Put("/:id", h.HandleUpdateClient)
}

// HandleGetClients lists the directory, optionally filtered with ?q= over
// name, PAN, GST, or customer code.
func (h *ClientHandler) HandleGetClients(c *fiber.Ctx) error {
	clients, err := h.service.SearchClients(c.Query("q"))
	if err != nil {
		log.Printf("Error listing clients: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve clients",
			"error":   err.Error(),
		})
	}
	return c.JSON(clients)
}

// HandleGetClientByID retrieves a single client.
func (h *ClientHandler) HandleGetClientByID(c *fiber.Ctx) error {
	clientID := c.Params("id")
	client, err := h.service.GetClientByID(clientID)
	if err != nil {
		log.Printf("Error getting client by ID %s: %v", clientID, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Client with ID %s not found", clientID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve client",
			"error":   err.Error(),
		})
	}
	return c.JSON(client)
}

// HandleCreateClient creates a client and returns the created entity with
// its assigned customer code, so callers never have to refetch to find it.
func (h *ClientHandler) HandleCreateClient(c *fiber.Ctx) error {
	var client models.Client
	if err := c.BodyParser(&client); err != nil {
		log.Printf("Error parsing client request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(client); err != nil {
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

	if err := h.service.CreateClient(&client, middleware.Actor(c)); err != nil {
		log.Printf("Error creating client: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create client",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(client)
}

// HandleUpdateClient saves edits to an existing client.
func (h *ClientHandler) HandleUpdateClient(c *fiber.Ctx) error {
	clientID := c.Params("id")
	existing, err := h.service.GetClientByID(clientID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Client with ID %s not found", clientID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve client",
			"error":   err.Error(),
		})
	}

	var client models.Client
	if err := c.BodyParser(&client); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	// Identity and the assigned customer code are immutable.
	client.ID = existing.ID
	client.CustomerNumber = existing.CustomerNumber
	client.CustomerID = existing.CustomerID
	client.CreatedBy = existing.CreatedBy
	client.CreatedAt = existing.CreatedAt

	if err := h.validate.Struct(client); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	if err := h.service.UpdateClient(&client, middleware.Actor(c)); err != nil {
		log.Printf("Error updating client %s: %v", clientID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update client",
			"error":   err.Error(),
		})
	}
	return c.JSON(client)
}
