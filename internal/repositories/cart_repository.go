package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kantin/internal/apperr"
	"kantin/internal/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	GetByUser(userID string) ([]models.CartItem, error)
	// AddItem adds quantity to the line, creating it when absent.
	AddItem(userID, menuItemID string, quantity int) error
	// SetQuantity replaces the quantity; zero or less removes the line.
	SetQuantity(userID, menuItemID string, quantity int) error
	RemoveItem(userID, menuItemID string) error
	Clear(userID string) error
}

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func (r *GORMCartRepository) GetByUser(userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("MenuItem").Where("user_id = ?", userID).Order("updated_at").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart of user %s: %w", userID, err)
	}
	return items, nil
}

func (r *GORMCartRepository) AddItem(userID, menuItemID string, quantity int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		err := tx.First(&item, "user_id = ? AND menu_item_id = ?", userID, menuItemID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{UserID: userID, MenuItemID: menuItemID, Quantity: quantity, UpdatedAt: time.Now()}
			if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
				return fmt.Errorf("failed to add item %s to cart: %w", menuItemID, err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("failed to read cart: %w", err)
		}

		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND menu_item_id = ?", userID, menuItemID).
			Updates(map[string]interface{}{"quantity": item.Quantity + quantity, "updated_at": time.Now()})
		if res.Error != nil {
			return fmt.Errorf("failed to update cart item %s: %w", menuItemID, res.Error)
		}
		return nil
	})
}

func (r *GORMCartRepository) SetQuantity(userID, menuItemID string, quantity int) error {
	if quantity <= 0 {
		return r.RemoveItem(userID, menuItemID)
	}
	res := r.db.Model(&models.CartItem{}).
		Where("user_id = ? AND menu_item_id = ?", userID, menuItemID).
		Updates(map[string]interface{}{"quantity": quantity, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item %s: %w", menuItemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("menu item %s is not in the cart: %w", menuItemID, apperr.ErrNotFound)
	}
	return nil
}

func (r *GORMCartRepository) RemoveItem(userID, menuItemID string) error {
	res := r.db.Delete(&models.CartItem{}, "user_id = ? AND menu_item_id = ?", userID, menuItemID)
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart item %s: %w", menuItemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("menu item %s is not in the cart: %w", menuItemID, apperr.ErrNotFound)
	}
	return nil
}

func (r *GORMCartRepository) Clear(userID string) error {
	if err := r.db.Delete(&models.CartItem{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to clear cart of user %s: %w", userID, err)
	}
	return nil
}
