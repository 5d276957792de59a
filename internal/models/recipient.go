package models

import "time"

// Recipient is the child an order is delivered to.
type Recipient struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"index;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(100)" validate:"required,min=2,max=100"`
	Class     string    `json:"class" gorm:"type:varchar(50)" validate:"required,max=50"`
	CreatedAt time.Time `json:"created_at"`
}
