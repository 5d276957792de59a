package services_test

import (
	"testing"

	"kantin/internal/apperr"
	"kantin/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestHandleOrderEvent(t *testing.T) {
	assert.NoError(t, services.HandleOrderEvent([]byte(`{"type":"order.created","order_id":"ORD-1","status":"pending"}`)))
	assert.NoError(t, services.HandleOrderEvent([]byte(`{"type":"order.status_changed","order_id":"ORD-1","status":"paid","source":"webhook"}`)))
	assert.NoError(t, services.HandleOrderEvent([]byte(`{"type":"order.archived","order_id":"ORD-1"}`)))

	assert.ErrorIs(t, services.HandleOrderEvent([]byte(`{not json`)), apperr.ErrInvalidInput)
	assert.ErrorIs(t, services.HandleOrderEvent([]byte(`{"type":"order.created"}`)), apperr.ErrInvalidInput)
}
