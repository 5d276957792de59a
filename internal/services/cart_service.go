package services

import (
	"fmt"

	"kantin/internal/apperr"
	"kantin/internal/models"
	"kantin/internal/repositories"

	"github.com/shopspring/decimal"
)

// CartLine is one priced line of a cart.
type CartLine struct {
	MenuItem models.MenuItem `json:"menu_item"`
	Quantity int             `json:"quantity"`
	Subtotal float64         `json:"subtotal"`
}

// Cart is a user's cart with its total.
type Cart struct {
	Items []CartLine `json:"items"`
	Total float64    `json:"total"`
}

// CartService handles the shopping cart.
type CartService struct {
	cartRepo repositories.CartRepository
	menuRepo repositories.MenuItemRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, menuRepo repositories.MenuItemRepository) *CartService {
	return &CartService{cartRepo: cartRepo, menuRepo: menuRepo}
}

// GetCart returns the current cart priced at today's menu prices.
func (s *CartService) GetCart(userID string) (*Cart, error) {
	items, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	cart := &Cart{Items: make([]CartLine, 0, len(items))}
	total := decimal.Zero
	for _, item := range items {
		subtotal := decimal.NewFromFloat(item.MenuItem.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		cart.Items = append(cart.Items, CartLine{
			MenuItem: item.MenuItem,
			Quantity: item.Quantity,
			Subtotal: subtotal.InexactFloat64(),
		})
		total = total.Add(subtotal)
	}
	cart.Total = total.InexactFloat64()
	return cart, nil
}

// AddItem adds quantity of an available menu item.
func (s *CartService) AddItem(userID, menuItemID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive: %w", apperr.ErrInvalidInput)
	}
	item, err := s.menuRepo.GetByID(menuItemID)
	if err != nil {
		return err
	}
	if !item.IsAvailable {
		return fmt.Errorf("menu item %s is not available: %w", item.Name, apperr.ErrInvalidInput)
	}
	return s.cartRepo.AddItem(userID, menuItemID, quantity)
}

// SetQuantity replaces the quantity of a line; zero or less removes it.
func (s *CartService) SetQuantity(userID, menuItemID string, quantity int) error {
	return s.cartRepo.SetQuantity(userID, menuItemID, quantity)
}

// RemoveItem drops a line from the cart.
func (s *CartService) RemoveItem(userID, menuItemID string) error {
	return s.cartRepo.RemoveItem(userID, menuItemID)
}

// Clear empties the cart.
func (s *CartService) Clear(userID string) error {
	return s.cartRepo.Clear(userID)
}
