package services

import (
	"fmt"

	"kantin/internal/apperr"
	"kantin/internal/models"
	"kantin/internal/repositories"
)

// RecipientService manages the children a parent orders for.
type RecipientService struct {
	recipientRepo repositories.RecipientRepository
	orderRepo     repositories.OrderRepository
}

// NewRecipientService creates a new RecipientService.
func NewRecipientService(recipientRepo repositories.RecipientRepository, orderRepo repositories.OrderRepository) *RecipientService {
	return &RecipientService{recipientRepo: recipientRepo, orderRepo: orderRepo}
}

// List returns the recipients owned by userID.
func (s *RecipientService) List(userID string) ([]models.Recipient, error) {
	return s.recipientRepo.GetByUser(userID)
}

// Get returns a recipient owned by userID. Recipients of other users are reported as not found.
func (s *RecipientService) Get(userID, id string) (*models.Recipient, error) {
	recipient, err := s.recipientRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if recipient.UserID != userID {
		return nil, fmt.Errorf("recipient with ID %s not found: %w", id, apperr.ErrNotFound)
	}
	return recipient, nil
}

// Create adds a recipient for userID.
func (s *RecipientService) Create(userID string, recipient *models.Recipient) error {
	recipient.ID = ""
	recipient.UserID = userID
	return s.recipientRepo.Create(recipient)
}

// Update changes name and class.
func (s *RecipientService) Update(userID, id string, data models.Recipient) (*models.Recipient, error) {
	recipient, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	recipient.Name = data.Name
	recipient.Class = data.Class
	if err := s.recipientRepo.Update(recipient); err != nil {
		return nil, err
	}
	return recipient, nil
}

// Delete removes a recipient unless an order references it.
func (s *RecipientService) Delete(userID, id string) error {
	if _, err := s.Get(userID, id); err != nil {
		return err
	}
	count, err := s.orderRepo.CountByRecipient(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("recipient %s has %d orders and cannot be deleted: %w", id, count, apperr.ErrConflict)
	}
	return s.recipientRepo.Delete(id)
}
