package models

import "time"

// CartItem is one menu item in a user's cart.
type CartItem struct {
	UserID     string    `json:"-" gorm:"primaryKey;type:varchar(36)"`
	MenuItemID string    `json:"menu_item_id" gorm:"primaryKey;type:varchar(36)"`
	MenuItem   MenuItem  `json:"menu_item" gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE"`
	Quantity   int       `json:"quantity"`
	UpdatedAt  time.Time `json:"-"`
}
