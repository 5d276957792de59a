package services_test

import (
	"fmt"
	"testing"

	"kantin/internal/apperr"
	"kantin/internal/models"
	"kantin/internal/repositories"
	"kantin/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRecipientService_DeleteRefusedWhenReferenced(t *testing.T) {
	recipients := new(MockRecipientRepository)
	orders := repositories.NewMockOrderRepository()
	service := services.NewRecipientService(recipients, orders)

	recipients.On("GetByID", "rcp-1").Return(&models.Recipient{ID: "rcp-1", UserID: "user-1"}, nil)
	recipients.On("GetByID", "rcp-2").Return(&models.Recipient{ID: "rcp-2", UserID: "user-1"}, nil)
	recipients.On("Delete", "rcp-2").Return(nil).Once()
	require.NoError(t, orders.Create(&models.Order{ID: "ORD-1", UserID: "user-1", RecipientID: "rcp-1"}))

	err := service.Delete("user-1", "rcp-1")
	assert.ErrorIs(t, err, apperr.ErrConflict)
	recipients.AssertNotCalled(t, "Delete", "rcp-1")

	require.NoError(t, service.Delete("user-1", "rcp-2"))
	recipients.AssertExpectations(t)
}

func TestRecipientService_ScopedToOwner(t *testing.T) {
	recipients := new(MockRecipientRepository)
	service := services.NewRecipientService(recipients, repositories.NewMockOrderRepository())

	recipients.On("GetByID", "rcp-1").Return(&models.Recipient{ID: "rcp-1", UserID: "user-1", Name: "Budi", Class: "3A"}, nil)
	recipients.On("GetByID", "rcp-404").Return(nil, fmt.Errorf("recipient not found: %w", apperr.ErrNotFound))
	recipients.On("Update", mock.AnythingOfType("*models.Recipient")).Return(nil)

	_, err := service.Get("user-2", "rcp-1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = service.Update("user-1", "rcp-404", models.Recipient{Name: "Ani", Class: "1B"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	updated, err := service.Update("user-1", "rcp-1", models.Recipient{Name: "Budi S", Class: "4A"})
	require.NoError(t, err)
	assert.Equal(t, "Budi S", updated.Name)
	assert.Equal(t, "4A", updated.Class)
	assert.Equal(t, "user-1", updated.UserID)
}

func TestRecipientService_CreateSetsOwner(t *testing.T) {
	recipients := new(MockRecipientRepository)
	service := services.NewRecipientService(recipients, repositories.NewMockOrderRepository())
	recipients.On("Create", mock.MatchedBy(func(r *models.Recipient) bool {
		return r.UserID == "user-1" && r.ID == ""
	})).Return(nil).Once()

	err := service.Create("user-1", &models.Recipient{ID: "forged", UserID: "user-9", Name: "Budi", Class: "3A"})
	require.NoError(t, err)
	recipients.AssertExpectations(t)
}
