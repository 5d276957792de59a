package models

import "fmt"

// OrderStatus is the payment state of an order.
type OrderStatus string

const (
	StatusPending OrderStatus = "pending"
	StatusPaid    OrderStatus = "paid"
	StatusFailed  OrderStatus = "failed"
	StatusExpired OrderStatus = "expired"
)

// AllStatuses lists every order status in display order.
var AllStatuses = []OrderStatus{StatusPending, StatusPaid, StatusFailed, StatusExpired}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailed, StatusExpired:
		return true
	}
	return false
}

// Terminal reports whether s is a final status.
func (s OrderStatus) Terminal() bool {
	return s == StatusPaid || s == StatusFailed || s == StatusExpired
}

// ParseOrderStatus converts a raw string into an OrderStatus.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("invalid order status: %s", raw)
	}
	return s, nil
}

// StatusDisplay is how a status is rendered to users.
type StatusDisplay struct {
	Label   string `json:"label"`
	Variant string `json:"variant"`
}

// DisplayStatus is the single place that maps a status to its label and badge variant.
func DisplayStatus(s OrderStatus) StatusDisplay {
	switch s {
	case StatusPaid:
		return StatusDisplay{Label: "Lunas", Variant: "paid"}
	case StatusPending:
		return StatusDisplay{Label: "Pending", Variant: "pending"}
	case StatusFailed:
		return StatusDisplay{Label: "Gagal", Variant: "failed"}
	case StatusExpired:
		return StatusDisplay{Label: "Expired", Variant: "expired"}
	default:
		return StatusDisplay{Label: string(s), Variant: "unknown"}
	}
}
