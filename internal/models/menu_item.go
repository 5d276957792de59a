package models

import "time"

// MenuItem is a meal or drink that can be ordered.
type MenuItem struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string    `json:"name" gorm:"type:varchar(100)" validate:"required,min=3,max=100"`
	Description string    `json:"description" validate:"omitempty,max=500"`
	Price       float64   `json:"price" validate:"required,gt=0"`
	Image       string    `json:"image" validate:"omitempty,url"`
	Category    string    `json:"category" gorm:"index;type:varchar(50)" validate:"required,max=50"`
	IsAvailable bool      `json:"is_available"`
	Stock       *int      `json:"stock,omitempty" validate:"omitempty,gte=0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
