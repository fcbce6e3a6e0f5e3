package repositories

import (
	"fmt"

	"leasedesk/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMClientRepository is a GORM implementation of ClientRepository.
type GORMClientRepository struct {
	db *gorm.DB
}

// NewGORMClientRepository creates a new instance of GORMClientRepository.
func NewGORMClientRepository(db *gorm.DB) *GORMClientRepository {
	return &GORMClientRepository{db: db}
}

// GetAll retrieves all clients ordered by customer number.
func (r *GORMClientRepository) GetAll() ([]models.Client, error) {
	var clients []models.Client
	if err := r.db.Order("customer_number").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("failed to get all clients: %w", err)
	}
	return clients, nil
}

// GetByID retrieves a single client by its ID.
func (r *GORMClientRepository) GetByID(id string) (*models.Client, error) {
	var client models.Client
	if err := r.db.First(&client, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("client with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get client by ID %s: %w", id, err)
	}
	return &client, nil
}

// Search matches clients by name, PAN, GST, or customer code.
func (r *GORMClientRepository) Search(query string) ([]models.Client, error) {
	var clients []models.Client
	pattern := "%" + query + "%"
	err := r.db.
		Where("name LIKE ? OR pan_number LIKE ? OR gst_number LIKE ? OR customer_id LIKE ?",
			pattern, pattern, pattern, pattern).
		Order("customer_number").
		Find(&clients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search clients: %w", err)
	}
	return clients, nil
}

// Create persists a new client, assigning the next customer number and the
// derived human-readable customer code inside one transaction. The client
// argument is updated in place, so callers get the created entity back
// directly instead of refetching it.
func (r *GORMClientRepository) Create(client *models.Client) error {
	if client.ID == "" {
		client.ID = uuid.New().String()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var maxNumber int
		if err := tx.Model(&models.Client{}).
			Select("COALESCE(MAX(customer_number), 0)").
			Scan(&maxNumber).Error; err != nil {
			return fmt.Errorf("failed to allocate customer number: %w", err)
		}
		client.CustomerNumber = maxNumber + 1
		client.CustomerID = fmt.Sprintf("CUST%06d", client.CustomerNumber)
		if err := tx.Create(client).Error; err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}
		return nil
	})
}

// Update updates an existing client in the database.
func (r *GORMClientRepository) Update(client *models.Client) error {
	res := r.db.Save(client)
	if res.Error != nil {
		return fmt.Errorf("failed to update client: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("client with ID %s not found for update", client.ID)
	}
	return nil
}
