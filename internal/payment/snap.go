package payment

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"kantin/internal/apperr"
)

const (
	SandboxTransactionsURL    = "https://app.sandbox.midtrans.com/snap/v1/transactions"
	ProductionTransactionsURL = "https://app.midtrans.com/snap/v1/transactions"
	SandboxScriptURL          = "https://app.sandbox.midtrans.com/snap/snap.js"
	ProductionScriptURL       = "https://app.midtrans.com/snap/snap.js"
	SandboxAPIURL             = "https://api.sandbox.midtrans.com"
	ProductionAPIURL          = "https://api.midtrans.com"
)

// Item is a line item as submitted by callers.
type Item struct {
	ID       string  `json:"id" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gt=0"`
}

// ChargeRequest is the body of the payment initiation endpoint.
type ChargeRequest struct {
	OrderID       string  `json:"order_id" validate:"required"`
	GrossAmount   float64 `json:"gross_amount" validate:"gt=0"`
	CustomerName  string  `json:"customer_name" validate:"required"`
	CustomerEmail string  `json:"customer_email" validate:"required,email"`
	Items         []Item  `json:"items" validate:"required,min=1,dive"`
}

// TransactionRequest is the Snap transaction payload.
type TransactionRequest struct {
	TransactionDetails TransactionDetails `json:"transaction_details"`
	CustomerDetails    CustomerDetails    `json:"customer_details"`
	ItemDetails        []ItemDetail       `json:"item_details"`
}

type TransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type CustomerDetails struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
}

type ItemDetail struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// TransactionResponse carries the token the browser needs to open the overlay.
type TransactionResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// StatusResponse is the gateway's current view of a transaction.
type StatusResponse struct {
	StatusCode        string `json:"status_code"`
	StatusMessage     string `json:"status_message"`
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
}

type errorResponse struct {
	ErrorMessages []string `json:"error_messages"`
}

// ValidateCharge checks the request shape.
func ValidateCharge(req ChargeRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("payment request: %v: %w", err, apperr.ErrInvalidInput)
	}
	return nil
}

// BuildTransaction converts a charge request into the gateway payload.
// Amounts are rounded and item names clipped; req is not modified.
func BuildTransaction(req ChargeRequest) (TransactionRequest, error) {
	gross := RoundAmount(req.GrossAmount)
	if gross <= 0 {
		return TransactionRequest{}, fmt.Errorf("gross amount %v must be positive: %w", req.GrossAmount, apperr.ErrInvalidInput)
	}

	items := make([]ItemDetail, 0, len(req.Items))
	var itemsTotal int64
	for _, item := range req.Items {
		detail := ItemDetail{
			ID:       item.ID,
			Name:     TruncateName(item.Name),
			Price:    RoundAmount(item.Price),
			Quantity: item.Quantity,
		}
		itemsTotal += detail.Price * int64(detail.Quantity)
		items = append(items, detail)
	}
	// Prices are rounded one by one, so fractional prices can drift from the
	// rounded gross. The gateway rejects a mismatch; fail before calling it.
	if itemsTotal != gross {
		return TransactionRequest{}, fmt.Errorf("item details add up to %d, gross amount is %d: %w", itemsTotal, gross, apperr.ErrInvalidInput)
	}

	return TransactionRequest{
		TransactionDetails: TransactionDetails{OrderID: req.OrderID, GrossAmount: gross},
		CustomerDetails:    CustomerDetails{FirstName: req.CustomerName, Email: req.CustomerEmail},
		ItemDetails:        items,
	}, nil
}

// SnapConfig holds gateway credentials.
type SnapConfig struct {
	ServerKey    string
	ClientKey    string
	IsProduction bool
	BaseURL      string // overrides the transactions endpoint when set
	APIURL       string // overrides the core API base used for status checks
	Timeout      time.Duration
}

// TransactionsURL is the endpoint transactions are created on.
func (c SnapConfig) TransactionsURL() string {
	switch {
	case c.BaseURL != "":
		return c.BaseURL
	case c.IsProduction:
		return ProductionTransactionsURL
	default:
		return SandboxTransactionsURL
	}
}

// StatusURL is the core API endpoint reporting the status of orderID.
func (c SnapConfig) StatusURL(orderID string) string {
	base := c.APIURL
	switch {
	case base != "":
	case c.IsProduction:
		base = ProductionAPIURL
	default:
		base = SandboxAPIURL
	}
	return strings.TrimRight(base, "/") + "/v2/" + url.PathEscape(orderID) + "/status"
}

// ScriptURL is the snap.js location for the browser.
func (c SnapConfig) ScriptURL() string {
	if c.IsProduction {
		return ProductionScriptURL
	}
	return SandboxScriptURL
}

// SnapClient creates Snap transactions.
type SnapClient struct {
	cfg SnapConfig
}

// NewSnapClient creates a new SnapClient.
func NewSnapClient(cfg SnapConfig) *SnapClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SnapClient{cfg: cfg}
}

// CreateTransaction requests a transaction token. It is never retried.
func (c *SnapClient) CreateTransaction(req TransactionRequest) (*TransactionResponse, error) {
	if c.cfg.ServerKey == "" {
		return nil, fmt.Errorf("MIDTRANS_SERVER_KEY is not configured: %w", apperr.ErrConfiguration)
	}

	slog.Info("creating snap transaction",
		"order_id", req.TransactionDetails.OrderID,
		"gross_amount", req.TransactionDetails.GrossAmount,
		"items", len(req.ItemDetails))

	agent := fiber.Post(c.cfg.TransactionsURL())
	agent.BasicAuth(c.cfg.ServerKey, "")
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	agent.Timeout(c.cfg.Timeout)
	agent.JSON(req)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to reach payment gateway: %w", errs[0])
	}

	if code < 200 || code >= 300 {
		var gwErr errorResponse
		msg := "Failed to create transaction"
		if err := json.Unmarshal(body, &gwErr); err == nil && len(gwErr.ErrorMessages) > 0 {
			msg = gwErr.ErrorMessages[0]
		}
		slog.Error("snap transaction rejected", "order_id", req.TransactionDetails.OrderID, "status", code, "body", string(body))
		return nil, fmt.Errorf("%s: %w", msg, apperr.ErrGatewayRejected)
	}

	var resp TransactionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("gateway returned no token: %w", apperr.ErrGatewayRejected)
	}
	return &resp, nil
}

// TransactionStatus asks the gateway for the current status of orderID.
func (c *SnapClient) TransactionStatus(orderID string) (*StatusResponse, error) {
	if c.cfg.ServerKey == "" {
		return nil, fmt.Errorf("MIDTRANS_SERVER_KEY is not configured: %w", apperr.ErrConfiguration)
	}

	agent := fiber.Get(c.cfg.StatusURL(orderID))
	agent.BasicAuth(c.cfg.ServerKey, "")
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	agent.Timeout(c.cfg.Timeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to reach payment gateway: %w", errs[0])
	}

	var resp StatusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode gateway status response: %w", err)
	}
	// The core API answers 200 with its own status_code in the body.
	if code != 200 || resp.TransactionStatus == "" {
		return nil, fmt.Errorf("no transaction for %s (%s %s): %w", orderID, resp.StatusCode, resp.StatusMessage, apperr.ErrGatewayRejected)
	}
	return &resp, nil
}
