package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kantin/internal/apperr"
	"kantin/internal/models"
)

// RecipientRepository defines the interface for recipient data access.
type RecipientRepository interface {
	GetByUser(userID string) ([]models.Recipient, error)
	GetByID(id string) (*models.Recipient, error)
	Create(recipient *models.Recipient) error
	Update(recipient *models.Recipient) error
	Delete(id string) error
}

// GORMRecipientRepository is a GORM implementation of RecipientRepository.
type GORMRecipientRepository struct {
	db *gorm.DB
}

// NewGORMRecipientRepository creates a new instance of GORMRecipientRepository.
func NewGORMRecipientRepository(db *gorm.DB) *GORMRecipientRepository {
	return &GORMRecipientRepository{db: db}
}

func (r *GORMRecipientRepository) GetByUser(userID string) ([]models.Recipient, error) {
	var recipients []models.Recipient
	if err := r.db.Where("user_id = ?", userID).Order("created_at").Find(&recipients).Error; err != nil {
		return nil, fmt.Errorf("failed to get recipients of user %s: %w", userID, err)
	}
	return recipients, nil
}

func (r *GORMRecipientRepository) GetByID(id string) (*models.Recipient, error) {
	var recipient models.Recipient
	if err := r.db.First(&recipient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipient with ID %s not found: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get recipient by ID %s: %w", id, err)
	}
	return &recipient, nil
}

func (r *GORMRecipientRepository) Create(recipient *models.Recipient) error {
	if recipient.ID == "" {
		recipient.ID = uuid.New().String()
	}
	if err := r.db.Create(recipient).Error; err != nil {
		return fmt.Errorf("failed to create recipient: %w", err)
	}
	return nil
}

func (r *GORMRecipientRepository) Update(recipient *models.Recipient) error {
	res := r.db.Model(&models.Recipient{}).Where("id = ?", recipient.ID).Updates(map[string]interface{}{
		"name":  recipient.Name,
		"class": recipient.Class,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update recipient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("recipient with ID %s not found for update: %w", recipient.ID, apperr.ErrNotFound)
	}
	return nil
}

func (r *GORMRecipientRepository) Delete(id string) error {
	res := r.db.Delete(&models.Recipient{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete recipient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("recipient with ID %s not found for deletion: %w", id, apperr.ErrNotFound)
	}
	return nil
}
