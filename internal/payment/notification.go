package payment

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"kantin/internal/apperr"
	"kantin/internal/models"
)

var validate = validator.New()

// Notification is the body the gateway posts to the webhook.
type Notification struct {
	TransactionStatus string `json:"transaction_status" validate:"required"`
	OrderID           string `json:"order_id" validate:"required"`
	GrossAmount       string `json:"gross_amount" validate:"required"`
	PaymentType       string `json:"payment_type" validate:"required"`
	TransactionTime   string `json:"transaction_time" validate:"required"`
	FraudStatus       string `json:"fraud_status,omitempty"`
	StatusCode        string `json:"status_code,omitempty"`
	TransactionID     string `json:"transaction_id,omitempty"`
	SignatureKey      string `json:"signature_key" validate:"required"`
}

// Validate checks that every required field is present and the amount parses.
func (n Notification) Validate() error {
	if err := validate.Struct(n); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(verrs))
			for _, e := range verrs {
				fields = append(fields, e.Field())
			}
			return fmt.Errorf("notification is missing %s: %w", strings.Join(fields, ", "), apperr.ErrInvalidInput)
		}
		return fmt.Errorf("notification: %v: %w", err, apperr.ErrInvalidInput)
	}
	if _, err := ParseGrossAmount(n.GrossAmount); err != nil {
		return err
	}
	return nil
}

// OrderStatus maps the notification onto an order status.
func (n Notification) OrderStatus() models.OrderStatus {
	return MapTransactionStatus(n.TransactionStatus, n.FraudStatus)
}

// Signature computes the gateway signature:
// hex(SHA512(order_id + status_code + gross_amount + server_key)).
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// VerifySignature checks the signature_key against the server key.
func (n Notification) VerifySignature(serverKey string) error {
	if serverKey == "" {
		return fmt.Errorf("MIDTRANS_SERVER_KEY is not configured: %w", apperr.ErrConfiguration)
	}
	expected := Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	if subtle.ConstantTimeCompare([]byte(strings.ToLower(n.SignatureKey)), []byte(expected)) != 1 {
		return fmt.Errorf("notification for order %s: %w", n.OrderID, apperr.ErrInvalidSignature)
	}
	return nil
}
