package repositories

import (
	"kantin/internal/models"
)

// OrderFilter narrows order listings. Empty fields match everything.
type OrderFilter struct {
	UserID string
	Status models.OrderStatus
}

// OrderRepository defines the interface for order data access.
// Orders are financial records and are never deleted.
type OrderRepository interface {
	GetAll(filter OrderFilter) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
	// UpdateStatus sets status and refreshes updated_at. Applying the same
	// status twice succeeds. An unknown id is an error and nothing is created.
	UpdateStatus(id string, status models.OrderStatus) error
	// UpdateStatusBatch updates every id or none of them.
	UpdateStatusBatch(ids []string, status models.OrderStatus) error
	SetPaymentID(ids []string, paymentID string) error
	CountByRecipient(recipientID string) (int64, error)
}
