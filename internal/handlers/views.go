package handlers

import "kantin/internal/models"

// orderView is an order as rendered to clients, with its display status.
type orderView struct {
	models.Order
	StatusLabel   string `json:"status_label"`
	StatusVariant string `json:"status_variant"`
}

func newOrderView(order models.Order) orderView {
	display := models.DisplayStatus(order.Status)
	return orderView{Order: order, StatusLabel: display.Label, StatusVariant: display.Variant}
}

func newOrderViews(orders []models.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, newOrderView(order))
	}
	return views
}
