package repositories

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"kantin/internal/apperr"
	"kantin/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// GetAll returns orders matching filter, newest first.
func (r *MockOrderRepository) GetAll(filter OrderFilter) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.UserID != "" && order.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		orderList = append(orderList, order)
	}
	sort.Slice(orderList, func(i, j int) bool {
		return orderList[i].CreatedAt.After(orderList[j].CreatedAt)
	})
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s not found: %w", id, apperr.ErrNotFound)
	}
	return &order, nil
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("order with ID %s already exists: %w", order.ID, apperr.ErrConflict)
	}
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	stored := *order
	stored.Items = append([]models.OrderItem(nil), order.Items...)
	r.orders[order.ID] = stored
	return nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(id string, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s not found for status update: %w", id, apperr.ErrNotFound)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// UpdateStatusBatch checks every id before touching any of them.
func (r *MockOrderRepository) UpdateStatusBatch(ids []string, status models.OrderStatus) error {
	if len(ids) == 0 {
		return fmt.Errorf("no orders to update: %w", apperr.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var missing []string
	for _, id := range ids {
		if _, ok := r.orders[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("orders %s not found, no order in the batch was updated: %w",
			strings.Join(missing, ", "), apperr.ErrBatchPartial)
	}

	now := time.Now()
	for _, id := range ids {
		order := r.orders[id]
		order.Status = status
		order.UpdatedAt = now
		r.orders[id] = order
	}
	return nil
}

// SetPaymentID records the gateway transaction id on the given orders.
func (r *MockOrderRepository) SetPaymentID(ids []string, paymentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if order, ok := r.orders[id]; ok {
			order.PaymentID = paymentID
			order.UpdatedAt = time.Now()
			r.orders[id] = order
		}
	}
	return nil
}

// CountByRecipient counts orders delivered to a recipient.
func (r *MockOrderRepository) CountByRecipient(recipientID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, order := range r.orders {
		if order.RecipientID == recipientID {
			count++
		}
	}
	return count, nil
}
