package repositories

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"kantin/internal/apperr"
	"kantin/internal/models"
)

// PaymentBatchRepository stores batch payments so a later notification for
// the batch id can be fanned out to its orders.
type PaymentBatchRepository interface {
	Create(batch *models.PaymentBatch) error
	// GetByID returns an error wrapping apperr.ErrNotFound when id is not a batch.
	GetByID(id string) (*models.PaymentBatch, error)
}

// GORMPaymentBatchRepository is a GORM implementation of PaymentBatchRepository.
type GORMPaymentBatchRepository struct {
	db *gorm.DB
}

// NewGORMPaymentBatchRepository creates a new instance of GORMPaymentBatchRepository.
func NewGORMPaymentBatchRepository(db *gorm.DB) *GORMPaymentBatchRepository {
	return &GORMPaymentBatchRepository{db: db}
}

func (r *GORMPaymentBatchRepository) Create(batch *models.PaymentBatch) error {
	if err := r.db.Create(batch).Error; err != nil {
		return fmt.Errorf("failed to create payment batch: %w", err)
	}
	return nil
}

func (r *GORMPaymentBatchRepository) GetByID(id string) (*models.PaymentBatch, error) {
	var batch models.PaymentBatch
	if err := r.db.Preload("Orders").First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment batch %s not found: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get payment batch %s: %w", id, err)
	}
	return &batch, nil
}

// MockPaymentBatchRepository is an in-memory implementation of PaymentBatchRepository.
type MockPaymentBatchRepository struct {
	batches map[string]models.PaymentBatch
	mu      sync.RWMutex
}

// NewMockPaymentBatchRepository creates a new instance of MockPaymentBatchRepository.
func NewMockPaymentBatchRepository() *MockPaymentBatchRepository {
	return &MockPaymentBatchRepository{batches: make(map[string]models.PaymentBatch)}
}

func (r *MockPaymentBatchRepository) Create(batch *models.PaymentBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now()
	}
	stored := *batch
	stored.Orders = append([]models.PaymentBatchOrder(nil), batch.Orders...)
	r.batches[batch.ID] = stored
	return nil
}

func (r *MockPaymentBatchRepository) GetByID(id string) (*models.PaymentBatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	batch, ok := r.batches[id]
	if !ok {
		return nil, fmt.Errorf("payment batch %s not found: %w", id, apperr.ErrNotFound)
	}
	return &batch, nil
}
