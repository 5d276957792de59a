package payment

import (
	"errors"
	"fmt"
	"sync"

	"kantin/internal/apperr"
	"kantin/internal/models"
)

// Outcome is what the payment overlay reported.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomePending
	OutcomeError
	OutcomeClosed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomePending:
		return "pending"
	case OutcomeError:
		return "error"
	case OutcomeClosed:
		return "closed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the payload the overlay hands back for one attempt.
type Result struct {
	Outcome           Outcome `json:"-"`
	OrderID           string  `json:"order_id"`
	TransactionStatus string  `json:"transaction_status"`
	FraudStatus       string  `json:"fraud_status,omitempty"`
	StatusMessage     string  `json:"status_message,omitempty"`
}

// OrderStatus maps the result through the same table as the webhook.
func (r Result) OrderStatus() models.OrderStatus {
	return MapTransactionStatus(r.TransactionStatus, r.FraudStatus)
}

// Callbacks receive the outcome of an attempt. Nil callbacks are skipped.
type Callbacks struct {
	OnSuccess func(Result)
	OnPending func(Result)
	OnError   func(Result)
	OnClose   func()
}

// Overlay is the gateway's hosted payment UI. Show opens it for token and
// calls report with every outcome it observes.
type Overlay interface {
	Show(token string, report func(Result)) error
}

// ErrOverlayNotReady is returned when no overlay was injected.
var ErrOverlayNotReady = errors.New("payment overlay is not ready")

// Bridge opens the overlay and guarantees exactly one callback per attempt.
type Bridge struct {
	overlay Overlay
}

// NewBridge creates a Bridge over an explicitly provided overlay.
func NewBridge(overlay Overlay) *Bridge {
	return &Bridge{overlay: overlay}
}

// Ready reports whether an overlay is available.
func (b *Bridge) Ready() bool {
	return b != nil && b.overlay != nil
}

// Pay runs one payment attempt. Later reports from the overlay after the
// first are dropped. If the overlay fails to open, OnError fires.
func (b *Bridge) Pay(token string, cb Callbacks) error {
	if !b.Ready() {
		return ErrOverlayNotReady
	}
	if token == "" {
		return fmt.Errorf("empty payment token: %w", apperr.ErrInvalidInput)
	}

	var once sync.Once
	dispatch := func(r Result) {
		once.Do(func() {
			switch r.Outcome {
			case OutcomeSuccess:
				if cb.OnSuccess != nil {
					cb.OnSuccess(r)
				}
			case OutcomePending:
				if cb.OnPending != nil {
					cb.OnPending(r)
				}
			case OutcomeClosed:
				if cb.OnClose != nil {
					cb.OnClose()
				}
			default:
				if cb.OnError != nil {
					cb.OnError(r)
				}
			}
		})
	}

	if err := b.overlay.Show(token, dispatch); err != nil {
		dispatch(Result{Outcome: OutcomeError, StatusMessage: err.Error()})
		return fmt.Errorf("failed to open payment overlay: %w", err)
	}
	return nil
}
