package repositories

import (
	"kantin/internal/models"
)

// MenuFilter narrows menu listings.
type MenuFilter struct {
	Category      string
	OnlyAvailable bool
}

// MenuItemRepository defines the interface for menu data access.
type MenuItemRepository interface {
	GetAll(filter MenuFilter) ([]models.MenuItem, error)
	GetByID(id string) (*models.MenuItem, error)
	Create(item *models.MenuItem) error
	Update(item *models.MenuItem) error
	Delete(id string) error
}
