package services

import (
	"strings"
	"time"

	"leasedesk/internal/models"
	"leasedesk/internal/repositories"
)

// ClientService handles business logic for the client directory.
type ClientService struct {
	repo repositories.ClientRepository
}

// NewClientService creates a new ClientService.
func NewClientService(repo repositories.ClientRepository) *ClientService {
	return &ClientService{repo: repo}
}

// GetAllClients retrieves all clients.
func (s *ClientService) GetAllClients() ([]models.Client, error) {
	return s.repo.GetAll()
}

// GetClientByID retrieves a single client by its ID.
func (s *ClientService) GetClientByID(id string) (*models.Client, error) {
	return s.repo.GetByID(id)
}

// SearchClients matches clients by name, PAN, GST, or customer code. An
// empty query returns the full directory.
func (s *ClientService) SearchClients(query string) ([]models.Client, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.repo.GetAll()
	}
	return s.repo.Search(query)
}

// CreateClient persists a new client and returns it with its assigned
// customer number and code filled in, so the caller can use the result
// directly as the selected customer.
func (s *ClientService) CreateClient(client *models.Client, actor string) error {
	now := time.Now()
	client.CreatedBy = actor
	client.CreatedAt = now
	client.LastModifiedBy = actor
	client.LastModifiedAt = now
	return s.repo.Create(client)
}

// UpdateClient saves edits to an existing client.
func (s *ClientService) UpdateClient(client *models.Client, actor string) error {
	client.LastModifiedBy = actor
	client.LastModifiedAt = time.Now()
	return s.repo.Update(client)
}
