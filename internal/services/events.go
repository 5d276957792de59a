package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"kantin/internal/apperr"
	"kantin/internal/models"
)

// Exchange and routing keys for order events.
const (
	OrderExchange             = "orders"
	RoutingOrderCreated       = "order.created"
	RoutingOrderStatusChanged = "order.status_changed"
)

// EventPublisher sends a message to a broker.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderEvent is the message body for every order event.
type OrderEvent struct {
	Type       string             `json:"type"`
	OrderID    string             `json:"order_id"`
	UserID     string             `json:"user_id,omitempty"`
	Status     models.OrderStatus `json:"status"`
	Total      float64            `json:"total,omitempty"`
	Source     string             `json:"source,omitempty"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// publishOrderEvent never fails the caller; the order write already happened.
func publishOrderEvent(p EventPublisher, evt OrderEvent) {
	if p == nil {
		slog.Debug("event publisher is not initialized, skipping", "type", evt.Type, "order_id", evt.OrderID)
		return
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now()
	}

	body, err := json.Marshal(evt)
	if err != nil {
		slog.Error("failed to marshal order event", "order_id", evt.OrderID, "error", err)
		return
	}
	if err := p.Publish(OrderExchange, evt.Type, body); err != nil {
		slog.Warn("failed to publish order event", "type", evt.Type, "order_id", evt.OrderID, "error", err)
		return
	}
	slog.Debug("published order event", "type", evt.Type, "order_id", evt.OrderID)
}

// HandleOrderEvent processes one consumed order event. Malformed messages
// return an error wrapping apperr.ErrInvalidInput so they are not requeued.
func HandleOrderEvent(body []byte) error {
	var evt OrderEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("malformed order event: %v: %w", err, apperr.ErrInvalidInput)
	}
	if evt.OrderID == "" || evt.Type == "" {
		return fmt.Errorf("order event without type or order id: %w", apperr.ErrInvalidInput)
	}

	display := models.DisplayStatus(evt.Status)
	switch evt.Type {
	case RoutingOrderCreated:
		slog.Info("order placed", "order_id", evt.OrderID, "user_id", evt.UserID, "total", evt.Total)
	case RoutingOrderStatusChanged:
		slog.Info("order status changed", "order_id", evt.OrderID, "status", evt.Status, "label", display.Label, "source", evt.Source)
	default:
		slog.Warn("unknown order event", "type", evt.Type, "order_id", evt.OrderID)
	}
	return nil
}
