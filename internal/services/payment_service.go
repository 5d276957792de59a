package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"kantin/internal/apperr"
	"kantin/internal/metrics"
	"kantin/internal/models"
	"kantin/internal/payment"
	"kantin/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchPrefix marks transaction ids that pay several orders at once.
const BatchPrefix = "BATCH-"

// Gateway is the part of the payment gateway the service talks to.
type Gateway interface {
	CreateTransaction(req payment.TransactionRequest) (*payment.TransactionResponse, error)
	TransactionStatus(orderID string) (*payment.StatusResponse, error)
}

// PaymentSession is what the browser needs to open the payment overlay.
type PaymentSession struct {
	PaymentID   string   `json:"payment_id"`
	OrderIDs    []string `json:"order_ids"`
	GrossAmount int64    `json:"gross_amount"`
	Token       string   `json:"token"`
	RedirectURL string   `json:"redirect_url"`
}

// ClientConfig is the public part of the gateway configuration.
type ClientConfig struct {
	ClientKey    string `json:"client_key"`
	IsProduction bool   `json:"is_production"`
	ScriptURL    string `json:"script_url"`
}

// PaymentService starts payments and reconciles their outcomes into orders.
type PaymentService struct {
	orderRepo repositories.OrderRepository
	batchRepo repositories.PaymentBatchRepository
	userRepo  repositories.UserRepository
	gateway   Gateway
	snap      payment.SnapConfig
	publisher EventPublisher
}

// NewPaymentService creates a new PaymentService. publisher may be nil.
func NewPaymentService(
	orderRepo repositories.OrderRepository,
	batchRepo repositories.PaymentBatchRepository,
	userRepo repositories.UserRepository,
	gateway Gateway,
	snap payment.SnapConfig,
	publisher EventPublisher,
) *PaymentService {
	return &PaymentService{
		orderRepo: orderRepo,
		batchRepo: batchRepo,
		userRepo:  userRepo,
		gateway:   gateway,
		snap:      snap,
		publisher: publisher,
	}
}

// ClientConfig returns the settings the browser uses to load the overlay.
func (s *PaymentService) ClientConfig() ClientConfig {
	return ClientConfig{
		ClientKey:    s.snap.ClientKey,
		IsProduction: s.snap.IsProduction,
		ScriptURL:    s.snap.ScriptURL(),
	}
}

// CreatePayment requests a payment token for a caller-built charge.
// A charge naming a stored order must be for that order's total.
// A gateway rejection is returned as is and never retried.
func (s *PaymentService) CreatePayment(req payment.ChargeRequest) (*payment.TransactionResponse, error) {
	if err := payment.ValidateCharge(req); err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(req.OrderID)
	switch {
	case err == nil:
		if charged, total := payment.RoundAmount(req.GrossAmount), payment.RoundAmount(order.TotalPrice); charged != total {
			return nil, fmt.Errorf("order %s totals %d, not %d: %w", order.ID, total, charged, apperr.ErrInvalidInput)
		}
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}
	tx, err := payment.BuildTransaction(req)
	if err != nil {
		return nil, err
	}
	return s.requestToken("single", tx)
}

func (s *PaymentService) requestToken(kind string, tx payment.TransactionRequest) (*payment.TransactionResponse, error) {
	resp, err := s.gateway.CreateTransaction(tx)
	if err != nil {
		metrics.Tokens.WithLabelValues(kind, apperr.Kind(err)).Inc()
		return nil, err
	}
	metrics.Tokens.WithLabelValues(kind, "ok").Inc()
	return resp, nil
}

// PayOrder requests a token for one pending order of the caller.
func (s *PaymentService) PayOrder(userID, orderID string) (*PaymentSession, error) {
	order, err := s.payableOrder(userID, orderID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	req := payment.ChargeRequest{
		OrderID:       order.ID,
		GrossAmount:   order.TotalPrice,
		CustomerName:  customerName(user),
		CustomerEmail: user.Email,
		Items:         chargeItems(order),
	}
	if err := payment.ValidateCharge(req); err != nil {
		return nil, err
	}
	tx, err := payment.BuildTransaction(req)
	if err != nil {
		return nil, err
	}

	resp, err := s.requestToken("single", tx)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.SetPaymentID([]string{order.ID}, order.ID); err != nil {
		slog.Warn("failed to record payment id", "order_id", order.ID, "error", err)
	}

	return &PaymentSession{
		PaymentID:   order.ID,
		OrderIDs:    []string{order.ID},
		GrossAmount: tx.TransactionDetails.GrossAmount,
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// PayBatch requests one token covering several pending orders of the caller.
// The batch is stored before the gateway is called so its notification can
// always be resolved back to the member orders.
func (s *PaymentService) PayBatch(userID string, orderIDs []string) (*PaymentSession, error) {
	ids := dedupe(orderIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("no orders to pay: %w", apperr.ErrInvalidInput)
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	batchID := BatchPrefix + uuid.NewString()
	req := payment.ChargeRequest{
		OrderID:       batchID,
		CustomerName:  customerName(user),
		CustomerEmail: user.Email,
	}
	members := make([]models.PaymentBatchOrder, 0, len(ids))
	gross := decimal.Zero
	for _, id := range ids {
		order, err := s.payableOrder(userID, id)
		if err != nil {
			return nil, err
		}
		gross = gross.Add(decimal.NewFromFloat(order.TotalPrice))
		req.Items = append(req.Items, chargeItems(order)...)
		members = append(members, models.PaymentBatchOrder{BatchID: batchID, OrderID: id})
	}
	req.GrossAmount = gross.InexactFloat64()

	if err := payment.ValidateCharge(req); err != nil {
		return nil, err
	}
	tx, err := payment.BuildTransaction(req)
	if err != nil {
		return nil, err
	}

	batch := &models.PaymentBatch{
		ID:          batchID,
		UserID:      userID,
		GrossAmount: tx.TransactionDetails.GrossAmount,
		Orders:      members,
	}
	if err := s.batchRepo.Create(batch); err != nil {
		return nil, err
	}

	resp, err := s.requestToken("batch", tx)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.SetPaymentID(ids, batchID); err != nil {
		slog.Warn("failed to record batch payment id", "batch_id", batchID, "error", err)
	}

	return &PaymentSession{
		PaymentID:   batchID,
		OrderIDs:    ids,
		GrossAmount: batch.GrossAmount,
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// HandleNotification validates, authenticates and applies a gateway notification.
func (s *PaymentService) HandleNotification(n payment.Notification) (models.OrderStatus, error) {
	status, err := s.handleNotification(n)
	result := "ok"
	if err != nil {
		result = apperr.Kind(err)
	}
	metrics.Notifications.WithLabelValues(payment.StatusLabel(n.TransactionStatus), result).Inc()
	return status, err
}

func (s *PaymentService) handleNotification(n payment.Notification) (models.OrderStatus, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}
	if err := n.VerifySignature(s.snap.ServerKey); err != nil {
		return "", err
	}

	status := n.OrderStatus()
	slog.Info("payment notification",
		"order_id", n.OrderID,
		"transaction_status", n.TransactionStatus,
		"fraud_status", n.FraudStatus,
		"payment_type", n.PaymentType,
		"status", status,
	)
	if err := s.applyStatus(n.OrderID, status, n.GrossAmount, "webhook"); err != nil {
		return "", err
	}
	return status, nil
}

// ApplyBrowserResult records the outcome the overlay reported for paymentID.
// The reported result is not trusted: the gateway is asked for the
// transaction's status and that answer goes through the same mapping as
// notifications.
func (s *PaymentService) ApplyBrowserResult(userID, paymentID string, reported payment.Result) (models.OrderStatus, error) {
	if err := s.checkPaymentOwner(userID, paymentID); err != nil {
		return "", err
	}

	current, err := s.gateway.TransactionStatus(paymentID)
	if err != nil {
		return "", err
	}
	status := payment.MapTransactionStatus(current.TransactionStatus, current.FraudStatus)
	if reported.TransactionStatus != "" && reported.TransactionStatus != current.TransactionStatus {
		slog.Warn("browser result differs from gateway",
			"payment_id", paymentID,
			"reported", reported.TransactionStatus,
			"gateway", current.TransactionStatus,
		)
	}

	if err := s.applyStatus(paymentID, status, current.GrossAmount, "browser"); err != nil {
		return "", err
	}
	return status, nil
}

// paymentTarget is what a gateway transaction id refers to.
type paymentTarget struct {
	orderIDs []string
	charged  int64
	batch    bool
	previous map[string]models.OrderStatus
}

func (s *PaymentService) resolvePayment(id string) (*paymentTarget, error) {
	if !strings.HasPrefix(id, BatchPrefix) {
		order, err := s.orderRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		return &paymentTarget{
			orderIDs: []string{id},
			charged:  payment.RoundAmount(order.TotalPrice),
			previous: map[string]models.OrderStatus{id: order.Status},
		}, nil
	}

	batch, err := s.batchRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	target := &paymentTarget{
		orderIDs: batch.OrderIDs(),
		charged:  batch.GrossAmount,
		batch:    true,
		previous: make(map[string]models.OrderStatus, len(batch.Orders)),
	}
	// Missing members are reported by the batch update.
	for _, orderID := range target.orderIDs {
		if order, err := s.orderRepo.GetByID(orderID); err == nil {
			target.previous[orderID] = order.Status
		}
	}
	return target, nil
}

// applyStatus writes status to the order named by id, or to every member of
// the batch named by id. Batch members are updated together or not at all.
// A paid status is only written when grossAmount is what was charged.
func (s *PaymentService) applyStatus(id string, status models.OrderStatus, grossAmount, source string) error {
	target, err := s.resolvePayment(id)
	if err != nil {
		return err
	}
	if status == models.StatusPaid {
		if err := payment.CheckGrossAmount(grossAmount, target.charged); err != nil {
			return fmt.Errorf("payment %s: %w", id, err)
		}
	}

	for orderID, previous := range target.previous {
		if previous.Terminal() && previous != status {
			slog.Warn("overwriting final order status",
				"order_id", orderID,
				"from", previous,
				"to", status,
				"source", source,
			)
		}
	}

	if target.batch {
		if err := s.orderRepo.UpdateStatusBatch(target.orderIDs, status); err != nil {
			return fmt.Errorf("failed to apply %s to batch %s: %w", status, id, err)
		}
	} else if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		return err
	}

	for _, orderID := range target.orderIDs {
		metrics.StatusUpdates.WithLabelValues(string(status), source).Inc()
		publishOrderEvent(s.publisher, OrderEvent{
			Type:    RoutingOrderStatusChanged,
			OrderID: orderID,
			Status:  status,
			Source:  source,
		})
	}
	return nil
}

func (s *PaymentService) checkPaymentOwner(userID, paymentID string) error {
	if strings.HasPrefix(paymentID, BatchPrefix) {
		batch, err := s.batchRepo.GetByID(paymentID)
		if err != nil {
			return err
		}
		if batch.UserID != userID {
			return fmt.Errorf("payment batch %s not found: %w", paymentID, apperr.ErrNotFound)
		}
		return nil
	}

	order, err := s.orderRepo.GetByID(paymentID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return fmt.Errorf("order with ID %s not found: %w", paymentID, apperr.ErrNotFound)
	}
	return nil
}

func (s *PaymentService) payableOrder(userID, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order with ID %s not found: %w", orderID, apperr.ErrNotFound)
	}
	if order.Status != models.StatusPending {
		return nil, fmt.Errorf("order %s is %s, only pending orders can be paid: %w", orderID, order.Status, apperr.ErrConflict)
	}
	return order, nil
}

func chargeItems(order *models.Order) []payment.Item {
	items := make([]payment.Item, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, payment.Item{
			ID:       item.MenuItemID,
			Name:     item.MenuItemName,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	return items
}

func customerName(user *models.User) string {
	if user.Name != "" {
		return user.Name
	}
	return user.Email
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
