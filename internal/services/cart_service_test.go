package services_test

import (
	"testing"

	"kantin/internal/apperr"
	"kantin/internal/models"
	"kantin/internal/repositories"
	"kantin/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCartService_GetCart(t *testing.T) {
	cart := new(MockCartRepository)
	service := services.NewCartService(cart, repositories.NewMockMenuItemRepository())
	cart.On("GetByUser", "user-1").Return([]models.CartItem{
		{MenuItemID: "menu-1", Quantity: 2, MenuItem: models.MenuItem{ID: "menu-1", Name: "Nasi Goreng", Price: 15000}},
		{MenuItemID: "menu-2", Quantity: 3, MenuItem: models.MenuItem{ID: "menu-2", Name: "Es Teh", Price: 5000}},
	}, nil)

	view, err := service.GetCart("user-1")
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 30000.0, view.Items[0].Subtotal)
	assert.Equal(t, 45000.0, view.Total)
}

func TestCartService_AddItem(t *testing.T) {
	cart := new(MockCartRepository)
	menu := repositories.NewMockMenuItemRepository()
	service := services.NewCartService(cart, menu)
	require.NoError(t, menu.Create(&models.MenuItem{ID: "menu-1", Name: "Nasi Goreng", Price: 15000, IsAvailable: true}))
	require.NoError(t, menu.Create(&models.MenuItem{ID: "menu-2", Name: "Es Teh", Price: 5000}))
	cart.On("AddItem", "user-1", "menu-1", 2).Return(nil).Once()

	require.NoError(t, service.AddItem("user-1", "menu-1", 2))

	assert.ErrorIs(t, service.AddItem("user-1", "menu-2", 1), apperr.ErrInvalidInput)
	assert.ErrorIs(t, service.AddItem("user-1", "menu-404", 1), apperr.ErrNotFound)
	assert.ErrorIs(t, service.AddItem("user-1", "menu-1", 0), apperr.ErrInvalidInput)

	cart.AssertExpectations(t)
	cart.AssertNumberOfCalls(t, "AddItem", 1)
	cart.AssertNotCalled(t, "AddItem", "user-1", "menu-2", mock.Anything)
}
