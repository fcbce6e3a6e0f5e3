package repositories

import "leasedesk/internal/models"

// ClientRepository defines the interface for client directory data access.
type ClientRepository interface {
	GetAll() ([]models.Client, error)
	GetByID(id string) (*models.Client, error)
	Search(query string) ([]models.Client, error)
	Create(client *models.Client) error
	Update(client *models.Client) error
}
