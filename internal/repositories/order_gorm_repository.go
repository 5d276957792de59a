package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"kantin/internal/apperr"
	"kantin/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// GetAll retrieves orders matching filter, newest first.
func (r *GORMOrderRepository) GetAll(filter OrderFilter) ([]models.Order, error) {
	q := r.db.Preload("Items").Order("created_at desc")
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves an order with its items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s not found: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// Create inserts the order and its items.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// UpdateStatus updates the status of an order.
func (r *GORMOrderRepository) UpdateStatus(id string, status models.OrderStatus) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update status of order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for status update: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// UpdateStatusBatch updates all orders in one transaction. If any id is
// missing the transaction is rolled back and the missing ids are reported.
func (r *GORMOrderRepository) UpdateStatusBatch(ids []string, status models.OrderStatus) error {
	if len(ids) == 0 {
		return fmt.Errorf("no orders to update: %w", apperr.ErrInvalidInput)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		var missing []string
		for _, id := range ids {
			res := tx.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
				"status":     string(status),
				"updated_at": now,
			})
			if res.Error != nil {
				return fmt.Errorf("failed to update status of order %s: %w", id, res.Error)
			}
			if res.RowsAffected == 0 {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("orders %s not found, no order in the batch was updated: %w",
				strings.Join(missing, ", "), apperr.ErrBatchPartial)
		}
		return nil
	})
}

// SetPaymentID records the gateway transaction id on the given orders.
func (r *GORMOrderRepository) SetPaymentID(ids []string, paymentID string) error {
	res := r.db.Model(&models.Order{}).Where("id IN ?", ids).Updates(map[string]interface{}{
		"payment_id": paymentID,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to set payment id %s: %w", paymentID, res.Error)
	}
	return nil
}

// CountByRecipient counts orders delivered to a recipient.
func (r *GORMOrderRepository) CountByRecipient(recipientID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Order{}).Where("recipient_id = ?", recipientID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders for recipient %s: %w", recipientID, err)
	}
	return count, nil
}
