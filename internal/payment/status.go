// Package payment talks to the Midtrans Snap gateway and translates its
// transaction vocabulary into order statuses.
package payment

import "kantin/internal/models"

// Gateway transaction statuses.
const (
	TransactionCapture    = "capture"
	TransactionSettlement = "settlement"
	TransactionPending    = "pending"
	TransactionDeny       = "deny"
	TransactionCancel     = "cancel"
	TransactionFailure    = "failure"
	TransactionExpire     = "expire"
)

// FraudAccept is the only fraud status that lets a captured payment through.
const FraudAccept = "accept"

// MapTransactionStatus converts a gateway transaction status and optional
// fraud status into an order status. Unknown statuses leave the order pending.
func MapTransactionStatus(transactionStatus, fraudStatus string) models.OrderStatus {
	switch transactionStatus {
	case TransactionCapture, TransactionSettlement:
		if fraudStatus == "" || fraudStatus == FraudAccept {
			return models.StatusPaid
		}
		return models.StatusFailed
	case TransactionPending:
		return models.StatusPending
	case TransactionDeny, TransactionCancel, TransactionFailure:
		return models.StatusFailed
	case TransactionExpire:
		return models.StatusExpired
	default:
		return models.StatusPending
	}
}

// StatusLabel returns transactionStatus when it belongs to the gateway
// vocabulary and "other" otherwise. Used as a metric label value.
func StatusLabel(transactionStatus string) string {
	switch transactionStatus {
	case TransactionCapture, TransactionSettlement, TransactionPending,
		TransactionDeny, TransactionCancel, TransactionFailure, TransactionExpire:
		return transactionStatus
	}
	return "other"
}
