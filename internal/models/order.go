package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is a line of an order. Name and price are copied from the menu
// when the order is created so later menu edits do not change it.
type OrderItem struct {
	ID           uint    `json:"-" gorm:"primaryKey"`
	OrderID      string  `json:"-" gorm:"index;type:varchar(64)"`
	MenuItemID   string  `json:"menu_item_id" gorm:"type:varchar(36)"`
	MenuItemName string  `json:"menu_item_name" gorm:"type:varchar(100)"`
	Price        float64 `json:"price"` // Price at the time of order
	Quantity     int     `json:"quantity"`
}

// Subtotal returns price times quantity.
func (i OrderItem) Subtotal() float64 {
	return i.subtotal().InexactFloat64()
}

func (i OrderItem) subtotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a parent's request for meals delivered to a recipient on a date.
type Order struct {
	ID             string      `json:"id" gorm:"primaryKey;type:varchar(64)"`
	UserID         string      `json:"user_id" gorm:"index;type:varchar(36)"`
	RecipientID    string      `json:"recipient_id" gorm:"index;type:varchar(36)"`
	RecipientName  string      `json:"recipient_name" gorm:"type:varchar(100)"`
	RecipientClass string      `json:"recipient_class" gorm:"type:varchar(50)"`
	Items          []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	TotalPrice     float64     `json:"total_price"`
	DeliveryDate   time.Time   `json:"delivery_date"`
	Status         OrderStatus `json:"status" gorm:"type:varchar(16);index"`
	PaymentID      string      `json:"payment_id,omitempty" gorm:"type:varchar(64)"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// ItemsTotal sums the line items. A well-formed order has TotalPrice equal to it.
// Amounts are summed as decimals so fractional prices do not drift.
func (o Order) ItemsTotal() float64 {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.subtotal())
	}
	return total.InexactFloat64()
}
