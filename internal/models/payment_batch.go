package models

import "time"

// PaymentBatch groups several orders paid with one gateway transaction.
// Its ID is the transaction id sent to the gateway.
type PaymentBatch struct {
	ID          string              `json:"id" gorm:"primaryKey;type:varchar(64)"`
	UserID      string              `json:"user_id" gorm:"index;type:varchar(36)"`
	GrossAmount int64               `json:"gross_amount"`
	Orders      []PaymentBatchOrder `json:"orders" gorm:"foreignKey:BatchID"`
	CreatedAt   time.Time           `json:"created_at"`
}

// PaymentBatchOrder is one member of a batch.
type PaymentBatchOrder struct {
	BatchID string `json:"-" gorm:"primaryKey;type:varchar(64)"`
	OrderID string `json:"order_id" gorm:"primaryKey;type:varchar(64)"`
}

// OrderIDs returns the member order ids.
func (b PaymentBatch) OrderIDs() []string {
	ids := make([]string, 0, len(b.Orders))
	for _, o := range b.Orders {
		ids = append(ids, o.OrderID)
	}
	return ids
}
