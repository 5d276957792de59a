package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kantin/internal/apperr"
	"kantin/internal/models"
)

// GORMMenuItemRepository is a GORM implementation of MenuItemRepository.
type GORMMenuItemRepository struct {
	db *gorm.DB
}

// NewGORMMenuItemRepository creates a new instance of GORMMenuItemRepository.
func NewGORMMenuItemRepository(db *gorm.DB) *GORMMenuItemRepository {
	return &GORMMenuItemRepository{
		db: db,
	}
}

// GetAll retrieves menu items ordered by category and name.
func (r *GORMMenuItemRepository) GetAll(filter MenuFilter) ([]models.MenuItem, error) {
	q := r.db.Order("category, name")
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.OnlyAvailable {
		q = q.Where("is_available = ?", true)
	}

	var items []models.MenuItem
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get menu items: %w", err)
	}
	return items, nil
}

// GetByID retrieves a single menu item by its ID.
func (r *GORMMenuItemRepository) GetByID(id string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("menu item with ID %s not found: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get menu item by ID %s: %w", id, err)
	}
	return &item, nil
}

// Create creates a new menu item.
func (r *GORMMenuItemRepository) Create(item *models.MenuItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create menu item: %w", err)
	}
	return nil
}

// Update updates an existing menu item. Orders already placed keep their own copy of the price.
func (r *GORMMenuItemRepository) Update(item *models.MenuItem) error {
	res := r.db.Model(&models.MenuItem{}).Where("id = ?", item.ID).Select("*").Omit("id", "created_at").Updates(item)
	if res.Error != nil {
		return fmt.Errorf("failed to update menu item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("menu item with ID %s not found for update: %w", item.ID, apperr.ErrNotFound)
	}
	return nil
}

// Delete deletes a menu item by its ID.
func (r *GORMMenuItemRepository) Delete(id string) error {
	res := r.db.Delete(&models.MenuItem{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete menu item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("menu item with ID %s not found for deletion: %w", id, apperr.ErrNotFound)
	}
	return nil
}
