package services

import (
	"kantin/internal/models"
	"kantin/internal/repositories"
)

// MenuService handles business logic related to the menu.
type MenuService struct {
	repo repositories.MenuItemRepository
}

// NewMenuService creates a new MenuService.
func NewMenuService(repo repositories.MenuItemRepository) *MenuService {
	return &MenuService{
		repo: repo,
	}
}

// GetMenu retrieves menu items matching filter.
func (s *MenuService) GetMenu(filter repositories.MenuFilter) ([]models.MenuItem, error) {
	return s.repo.GetAll(filter)
}

// GetMenuItem retrieves a single menu item by its ID.
func (s *MenuService) GetMenuItem(id string) (*models.MenuItem, error) {
	return s.repo.GetByID(id)
}

// CreateMenuItem adds an item to the menu.
func (s *MenuService) CreateMenuItem(item *models.MenuItem) error {
	return s.repo.Create(item)
}

// UpdateMenuItem updates an existing menu item.
func (s *MenuService) UpdateMenuItem(item *models.MenuItem) error {
	return s.repo.Update(item)
}

// DeleteMenuItem removes a menu item. Past orders keep their snapshot.
func (s *MenuService) DeleteMenuItem(id string) error {
	return s.repo.Delete(id)
}
