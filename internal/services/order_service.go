package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"kantin/internal/apperr"
	"kantin/internal/metrics"
	"kantin/internal/models"
	"kantin/internal/repositories"

	"github.com/google/uuid"
)

// DateLayout is the wire format of delivery dates.
const DateLayout = "2006-01-02"

// DeliveryWindow bounds the delivery dates a parent may choose.
type DeliveryWindow struct {
	CutoffHour   int // after this hour, today is no longer orderable
	MaxDaysAhead int
}

// Bounds returns the earliest and latest orderable dates, at midnight in now's location.
func (w DeliveryWindow) Bounds(now time.Time) (time.Time, time.Time) {
	earliest := startOfDay(now)
	if now.Hour() >= w.CutoffHour {
		earliest = earliest.AddDate(0, 0, 1)
	}
	return earliest, earliest.AddDate(0, 0, w.MaxDaysAhead)
}

// Allows reports whether date falls inside the window.
func (w DeliveryWindow) Allows(now, date time.Time) bool {
	earliest, latest := w.Bounds(now)
	day := startOfDay(date.In(now.Location()))
	return !day.Before(earliest) && !day.After(latest)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CheckoutRequest is the body of the checkout endpoint.
type CheckoutRequest struct {
	RecipientID  string `json:"recipient_id" validate:"required"`
	DeliveryDate string `json:"delivery_date" validate:"required"`
}

// ReorderResult reports what a reorder put back into the cart.
type ReorderResult struct {
	Added   int      `json:"added"`
	Skipped []string `json:"skipped"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo     repositories.OrderRepository
	recipientRepo repositories.RecipientRepository
	cartRepo      repositories.CartRepository
	menuRepo      repositories.MenuItemRepository
	publisher     EventPublisher
	window        DeliveryWindow
	now           func() time.Time
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	recipientRepo repositories.RecipientRepository,
	cartRepo repositories.CartRepository,
	menuRepo repositories.MenuItemRepository,
	publisher EventPublisher,
	window DeliveryWindow,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		recipientRepo: recipientRepo,
		cartRepo:      cartRepo,
		menuRepo:      menuRepo,
		publisher:     publisher,
		window:        window,
		now:           time.Now,
	}
}

// SetClock replaces the time source.
func (s *OrderService) SetClock(now func() time.Time) {
	s.now = now
}

// Window returns the delivery window in effect right now.
func (s *OrderService) Window() (time.Time, time.Time) {
	return s.window.Bounds(s.now())
}

// Checkout turns the caller's cart into a pending order for one recipient and date.
func (s *OrderService) Checkout(userID string, req CheckoutRequest) (*models.Order, error) {
	now := s.now()
	deliveryDate, err := time.ParseInLocation(DateLayout, req.DeliveryDate, now.Location())
	if err != nil {
		return nil, fmt.Errorf("delivery date %q is not %s: %w", req.DeliveryDate, DateLayout, apperr.ErrInvalidInput)
	}
	if !s.window.Allows(now, deliveryDate) {
		earliest, latest := s.window.Bounds(now)
		return nil, fmt.Errorf("delivery date must be between %s and %s: %w",
			earliest.Format(DateLayout), latest.Format(DateLayout), apperr.ErrInvalidInput)
	}

	recipient, err := s.recipientRepo.GetByID(req.RecipientID)
	if err != nil {
		return nil, err
	}
	if recipient.UserID != userID {
		return nil, fmt.Errorf("recipient with ID %s not found: %w", req.RecipientID, apperr.ErrNotFound)
	}

	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(cart) == 0 {
		return nil, fmt.Errorf("cart is empty: %w", apperr.ErrInvalidInput)
	}

	items := make([]models.OrderItem, 0, len(cart))
	for _, line := range cart {
		items = append(items, models.OrderItem{
			MenuItemID:   line.MenuItemID,
			MenuItemName: line.MenuItem.Name,
			Price:        line.MenuItem.Price, // Use price at the time of order creation
			Quantity:     line.Quantity,
		})
	}

	order := &models.Order{
		ID:             NewOrderID(now),
		UserID:         userID,
		RecipientID:    recipient.ID,
		RecipientName:  recipient.Name,
		RecipientClass: recipient.Class,
		Items:          items,
		DeliveryDate:   deliveryDate,
		Status:         models.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	order.TotalPrice = order.ItemsTotal()

	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	if err := s.cartRepo.Clear(userID); err != nil {
		slog.Warn("order created but cart was not cleared", "order_id", order.ID, "error", err)
	}

	publishOrderEvent(s.publisher, OrderEvent{
		Type:       RoutingOrderCreated,
		OrderID:    order.ID,
		UserID:     userID,
		Status:     order.Status,
		Total:      order.TotalPrice,
		OccurredAt: now,
	})

	return order, nil
}

// NewOrderID returns an id of the form ORD-<unix millis>-<suffix>.
func NewOrderID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}

// ListOrders returns the orders of one user, or every order when filter.UserID is empty.
func (s *OrderService) ListOrders(filter repositories.OrderFilter) ([]models.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("invalid order status: %s: %w", filter.Status, apperr.ErrInvalidInput)
	}
	return s.orderRepo.GetAll(filter)
}

// GetOrder retrieves any order by its ID.
func (s *OrderService) GetOrder(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// GetOrderForUser retrieves an order owned by userID.
func (s *OrderService) GetOrderForUser(userID, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order with ID %s not found: %w", id, apperr.ErrNotFound)
	}
	return order, nil
}

// UpdateOrderStatus sets the status of an order by hand.
func (s *OrderService) UpdateOrderStatus(id string, status string) error {
	parsed, err := models.ParseOrderStatus(status)
	if err != nil {
		return fmt.Errorf("%v: %w", err, apperr.ErrInvalidInput)
	}

	if err := s.orderRepo.UpdateStatus(id, parsed); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	metrics.StatusUpdates.WithLabelValues(string(parsed), "admin").Inc()

	publishOrderEvent(s.publisher, OrderEvent{
		Type:    RoutingOrderStatusChanged,
		OrderID: id,
		Status:  parsed,
		Source:  "admin",
	})
	return nil
}

// Reorder puts the items of a past order back into the cart. Items that
// left the menu or are unavailable are skipped.
func (s *OrderService) Reorder(userID, id string) (*ReorderResult, error) {
	order, err := s.GetOrderForUser(userID, id)
	if err != nil {
		return nil, err
	}

	result := &ReorderResult{Skipped: []string{}}
	for _, item := range order.Items {
		menuItem, err := s.menuRepo.GetByID(item.MenuItemID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				result.Skipped = append(result.Skipped, item.MenuItemName)
				continue
			}
			return nil, err
		}
		if !menuItem.IsAvailable {
			result.Skipped = append(result.Skipped, item.MenuItemName)
			continue
		}
		if err := s.cartRepo.AddItem(userID, item.MenuItemID, item.Quantity); err != nil {
			return nil, err
		}
		result.Added++
	}
	return result, nil
}
