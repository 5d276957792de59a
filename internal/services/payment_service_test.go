package services_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"kantin/internal/apperr"
	"kantin/internal/models"
	"kantin/internal/payment"
	"kantin/internal/repositories"
	"kantin/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testServerKey = "SB-Mid-server-test"

type paymentFixture struct {
	orders    *repositories.MockOrderRepository
	batches   *repositories.MockPaymentBatchRepository
	users     *MockUserRepository
	gateway   *MockGateway
	publisher *recordingPublisher
	service   *services.PaymentService
}

func newPaymentFixture(serverKey string) *paymentFixture {
	f := &paymentFixture{
		orders:    repositories.NewMockOrderRepository(),
		batches:   repositories.NewMockPaymentBatchRepository(),
		users:     new(MockUserRepository),
		gateway:   new(MockGateway),
		publisher: &recordingPublisher{},
	}
	f.service = services.NewPaymentService(f.orders, f.batches, f.users, f.gateway,
		payment.SnapConfig{ServerKey: serverKey, ClientKey: "SB-Mid-client-test"}, f.publisher)
	return f
}

func (f *paymentFixture) addOrder(t *testing.T, id, userID string, total float64) {
	t.Helper()
	require.NoError(t, f.orders.Create(&models.Order{
		ID:             id,
		UserID:         userID,
		RecipientID:    "rcp-1",
		RecipientName:  "Budi",
		RecipientClass: "3A",
		Items: []models.OrderItem{
			{MenuItemID: "menu-1", MenuItemName: "Nasi Goreng", Price: total, Quantity: 1},
		},
		TotalPrice:   total,
		DeliveryDate: time.Now().AddDate(0, 0, 1),
		Status:       models.StatusPending,
	}))
}

func (f *paymentFixture) status(t *testing.T, id string) models.OrderStatus {
	t.Helper()
	order, err := f.orders.GetByID(id)
	require.NoError(t, err)
	return order.Status
}

func signedNotification(orderID, transactionStatus, fraudStatus, grossAmount string) payment.Notification {
	n := payment.Notification{
		TransactionStatus: transactionStatus,
		OrderID:           orderID,
		GrossAmount:       grossAmount,
		PaymentType:       "bank_transfer",
		TransactionTime:   "2024-05-01 10:00:00",
		FraudStatus:       fraudStatus,
		StatusCode:        "200",
	}
	n.SignatureKey = payment.Signature(n.OrderID, n.StatusCode, n.GrossAmount, testServerKey)
	return n
}

func TestPaymentService_HandleNotificationMapsStatus(t *testing.T) {
	tests := []struct {
		transactionStatus string
		fraudStatus       string
		want              models.OrderStatus
	}{
		{"settlement", "accept", models.StatusPaid},
		{"capture", "", models.StatusPaid},
		{"settlement", "challenge", models.StatusFailed},
		{"pending", "", models.StatusPending},
		{"expire", "", models.StatusExpired},
		{"deny", "", models.StatusFailed},
		{"cancel", "accept", models.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.transactionStatus+"/"+tt.fraudStatus, func(t *testing.T) {
			f := newPaymentFixture(testServerKey)
			f.addOrder(t, "ORD-1", "user-1", 25000)

			got, err := f.service.HandleNotification(signedNotification("ORD-1", tt.transactionStatus, tt.fraudStatus, "25000.00"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, f.status(t, "ORD-1"))

			events := f.publisher.Events()
			require.Len(t, events, 1)
			assert.Equal(t, services.RoutingOrderStatusChanged, events[0].Type)
			assert.Equal(t, "webhook", events[0].Source)
		})
	}
}

func TestPaymentService_HandleNotificationIsIdempotent(t *testing.T) {
	f := newPaymentFixture(testServerKey)
	f.addOrder(t, "ORD-1", "user-1", 25000)
	n := signedNotification("ORD-1", "settlement", "accept", "25000.00")

	_, err := f.service.HandleNotification(n)
	require.NoError(t, err)
	_, err = f.service.HandleNotification(n)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPaid, f.status(t, "ORD-1"))
}

func TestPaymentService_HandleNotificationUnknownOrder(t *testing.T) {
	f := newPaymentFixture(testServerKey)

	_, err := f.service.HandleNotification(signedNotification("ORD-404", "settlement", "accept", "10000.00"))
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.orders.GetByID("ORD-404")
	assert.ErrorIs(t, err, apperr.ErrNotFound, "no order may be created by a notification")
}

func TestPaymentService_HandleNotificationRejectsWithoutWrite(t *testing.T) {
	tampered := signedNotification("ORD-1", "settlement", "accept", "25000.00")
	tampered.GrossAmount = "1.00"

	missing := signedNotification("ORD-1", "settlement", "accept", "25000.00")
	missing.PaymentType = ""

	tests := []struct {
		name      string
		serverKey string
		n         payment.Notification
		wantErr   error
	}{
		{"bad signature", testServerKey, tampered, apperr.ErrInvalidSignature},
		{"missing field", testServerKey, missing, apperr.ErrInvalidInput},
		{"no server key", "", signedNotification("ORD-1", "settlement", "accept", "25000.00"), apperr.ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture(tt.serverKey)
			f.addOrder(t, "ORD-1", "user-1", 25000)

			_, err := f.service.HandleNotification(tt.n)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, models.StatusPending, f.status(t, "ORD-1"))
			assert.Empty(t, f.publisher.Events())
		})
	}
}

func TestPaymentService_SettlementMustMatchChargedAmount(t *testing.T) {
	f := newPaymentFixture(testServerKey)
	f.addOrder(t, "ORD-1", "user-1", 50000)
	require.NoError(t, f.batches.Create(&models.PaymentBatch{
		ID:          "BATCH-1",
		UserID:      "user-1",
		GrossAmount: 50000,
		Orders:      []models.PaymentBatchOrder{{BatchID: "BATCH-1", OrderID: "ORD-1"}},
	}))

	for _, id := range []string{"ORD-1", "BATCH-1"} {
		_, err := f.service.HandleNotification(signedNotification(id, "settlement", "accept", "1.00"))
		assert.ErrorIs(t, err, apperr.ErrInvalidInput, id)
		assert.Equal(t, models.StatusPending, f.status(t, "ORD-1"))
	}
	assert.Empty(t, f.publisher.Events())

	// Non-paid outcomes do not depend on the amount.
	got, err := f.service.HandleNotification(signedNotification("ORD-1", "expire", "", "1.00"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, got)
}

func TestPaymentService_ApplyBrowserResultChecksAmount(t *testing.T) {
	f := newPaymentFixture(testServerKey)
	f.addOrder(t, "ORD-1", "user-1", 10000)
	f.gateway.On("TransactionStatus", "ORD-1").
		Return(&payment.StatusResponse{OrderID: "ORD-1", TransactionStatus: "settlement", GrossAmount: "1.00"}, nil)

	_, err := f.service.ApplyBrowserResult("user-1", "ORD-1", payment.Result{TransactionStatus: "settlement"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.Equal(t, models.StatusPending, f.status(t, "ORD-1"))
}

func TestPaymentService_CreatePaymentRejectsWrongTotalForStoredOrder(t *testing.T) {
	f := newPaymentFixture(testServerKey)
	f.addOrder(t, "ORD-1", "user-1", 50000)

	_, err := f.service.CreatePayment(payment.ChargeRequest{
		OrderID:       "ORD-1",
		GrossAmount:   1,
		CustomerName:  "Ibu Sari",
		CustomerEmail: "sari@example.com",
		Items:         []payment.Item{{ID: "menu-1", Name: "Nasi Goreng", Price: 1, Quantity: 1}},
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	f.gateway.AssertNotCalled(t, "CreateTransaction", mock.Anything)
}

func TestPaymentService_OverwritingFinalStatusIsLogged(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	f := newPaymentFixture(testServerKey)
	f.addOrder(t, "ORD-1", "user-1", 25000)

	_, err := f.service.HandleNotification(signedNotification("ORD-1", "settlement", "accept", "25000.00"))
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "overwriting final order status")

	// Last write wins, but the overwrite is visible.
	_, err = f.service.HandleNotification(signedNotification("ORD-1", "expire", "", "25000.00"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, f.status(t, "ORD-1"))
	assert.Contains(t, buf.String(), "overwriting final order status")
	assert.Contains(t, buf.String(), "from=paid")
}

func TestPaymentService_PayOrder(t *testing.T) {
	f := newPaymentFixture(testServerKey)
	longName := strings.Repeat("Nasi Goreng Spesial ", 4)
	require.NoError(t, f.orders.Create(&models.Order{
		ID:         "ORD-1",
		UserID:     "user-1",
		Items:      []models.OrderItem{{MenuItemID: "menu-1", MenuItemName: longName, Price: 15000.4, Quantity: 1}},
		TotalPrice: 15000.4,
		Status:     models.StatusPending,
	}))
	f.users.On("GetByID", "user-1").Return(&models.User{ID: "user-1", Name: "Ibu Sari", Email: "sari@example.com"}, nil)

	var sent payment.TransactionRequest
	f.gateway.On("CreateTransaction", mock.AnythingOfType("payment.TransactionRequest")).
		Run(func(args mock.Arguments) { sent = args.Get(0).(payment.TransactionRequest) }).
		Return(&payment.TransactionResponse{Token: "snap-token", RedirectURL: "https://pay.example/1"}, nil).Once()

	session, err := f.service.PayOrder("user-1", "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, "snap-token", session.Token)
	assert.Equal(t, "ORD-1", session.PaymentID)
	assert.Equal(t, int64(15000), session.GrossAmount)

	require.Len(t, sent.ItemDetails, 1)
	assert.Equal(t, payment.MaxItemNameLength, len([]rune(sent.ItemDetails[0].Name)))
	assert.Equal(t, int64(15000), sent.ItemDetails[0].Price)
	assert.Equal(t, "sari@example.com", sent.CustomerDetails.Email)

	stored, err := f.orders.GetByID("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, longName, stored.Items[0].MenuItemName, "stored order keeps the full name")
	assert.Equal(t, "ORD-1", stored.PaymentID)
	f.gateway.AssertExpectations(t)
}

func TestPaymentService_PayOrderRefusesOthersAndPaidOrders(t *testing.T) {
	f := newPaymentFixture(testServerKey)
	f.addOrder(t, "ORD-1", "user-1", 10000)
	f.addOrder(t, "ORD-2", "user-1", 10000)
	require.NoError(t, f.orders.UpdateStatus("ORD-2", models.StatusPaid))

	_, err := f.service.PayOrder("user-2", "ORD-1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.service.PayOrder("user-1", "ORD-2")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	f.gateway.AssertNotCalled(t, "CreateTransaction", mock.Anything)
}

func TestPaymentService_GatewayRejectionIsNotRetried(t *testing.T) {
	f := newPaymentFixture(testServerKey)
	f.gateway.On("CreateTransaction", mock.AnythingOfType("payment.TransactionRequest")).
		Return(nil, fmt.Errorf("transaction_details.gross_amount is not equal to the sum of item_details: %w", apperr.ErrGatewayRejected))

	_, err := f.service.CreatePayment(payment.ChargeRequest{
		OrderID:       "ORD-1",
		GrossAmount:   10000,
		CustomerName:  "Ibu Sari",
		CustomerEmail: "sari@example.com",
		Items:         []payment.Item{{ID: "menu-1", Name: "Soto", Price: 10000, Quantity: 1}},
	})
	assert.ErrorIs(t, err, apperr.ErrGatewayRejected)
	f.gateway.AssertNumberOfCalls(t, "CreateTransaction", 1)
}

func TestPaymentService_CreatePaymentValidates(t *testing.T) {
	f := newPaymentFixture(testServerKey)

	_, err := f.service.CreatePayment(payment.ChargeRequest{
		OrderID:       "ORD-1",
		GrossAmount:   0.4,
		CustomerName:  "Ibu Sari",
		CustomerEmail: "sari@example.com",
		Items:         []payment.Item{{ID: "menu-1", Name: "Permen", Price: 0.4, Quantity: 1}},
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	f.gateway.AssertNotCalled(t, "CreateTransaction", mock.Anything)
}

func TestPaymentService_PayBatchAndSettle(t *testing.T) {
	f := newPaymentFixture(testServerKey)
	f.addOrder(t, "ORD-1", "user-1", 10000)
	f.addOrder(t, "ORD-2", "user-1", 15000)
	f.users.On("GetByID", "user-1").Return(&models.User{ID: "user-1", Name: "Ibu Sari", Email: "sari@example.com"}, nil)

	var sent payment.TransactionRequest
	f.gateway.On("CreateTransaction", mock.AnythingOfType("payment.TransactionRequest")).
		Run(func(args mock.Arguments) { sent = args.Get(0).(payment.TransactionRequest) }).
		Return(&payment.TransactionResponse{Token: "batch-token"}, nil).Once()

	session, err := f.service.PayBatch("user-1", []string{"ORD-1", "ORD-2", "ORD-1"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(session.PaymentID, services.BatchPrefix))
	assert.Equal(t, []string{"ORD-1", "ORD-2"}, session.OrderIDs)
	assert.Equal(t, int64(25000), sent.TransactionDetails.GrossAmount)
	assert.Equal(t, session.PaymentID, sent.TransactionDetails.OrderID)
	assert.Len(t, sent.ItemDetails, 2)

	batch, err := f.batches.GetByID(session.PaymentID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ORD-1", "ORD-2"}, batch.OrderIDs())

	_, err = f.service.HandleNotification(signedNotification(session.PaymentID, "settlement", "accept", "25000.00"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, f.status(t, "ORD-1"))
	assert.Equal(t, models.StatusPaid, f.status(t, "ORD-2"))
	assert.Len(t, f.publisher.Events(), 2)
}

func TestPaymentService_BatchWithUnknownMemberChangesNothing(t *testing.T) {
	f := newPaymentFixture(testServerKey)
	f.addOrder(t, "ORD-1", "user-1", 10000)
	require.NoError(t, f.batches.Create(&models.PaymentBatch{
		ID:          "BATCH-1",
		UserID:      "user-1",
		GrossAmount: 20000,
		Orders: []models.PaymentBatchOrder{{BatchID: "BATCH-1", OrderID: "ORD-1"}, {BatchID: "BATCH-1", OrderID: "ORD-GONE"}},
	}))

	_, err := f.service.HandleNotification(signedNotification("BATCH-1", "settlement", "accept", "20000.00"))
	assert.ErrorIs(t, err, apperr.ErrBatchPartial)
	assert.Contains(t, err.Error(), "ORD-GONE")
	assert.Equal(t, models.StatusPending, f.status(t, "ORD-1"))
}

func TestPaymentService_PayBatchRequiresOwnPendingOrders(t *testing.T) {
	f := newPaymentFixture(testServerKey)
	f.addOrder(t, "ORD-1", "user-1", 10000)
	f.addOrder(t, "ORD-2", "user-2", 10000)
	f.users.On("GetByID", "user-1").Return(&models.User{ID: "user-1", Email: "sari@example.com"}, nil)

	_, err := f.service.PayBatch("user-1", []string{"ORD-1", "ORD-2"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.service.PayBatch("user-1", nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	f.gateway.AssertNotCalled(t, "CreateTransaction", mock.Anything)
}

func TestPaymentService_ApplyBrowserResultAsksGateway(t *testing.T) {
	f := newPaymentFixture(testServerKey)
	f.addOrder(t, "ORD-1", "user-1", 10000)
	f.gateway.On("TransactionStatus", "ORD-1").
		Return(&payment.StatusResponse{OrderID: "ORD-1", TransactionStatus: "pending"}, nil).Once()

	// The browser claims success; the gateway still reports pending.
	got, err := f.service.ApplyBrowserResult("user-1", "ORD-1", payment.Result{TransactionStatus: "settlement"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got)
	assert.Equal(t, models.StatusPending, f.status(t, "ORD-1"))

	_, err = f.service.ApplyBrowserResult("user-2", "ORD-1", payment.Result{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	f.gateway.AssertNumberOfCalls(t, "TransactionStatus", 1)
}

func TestPaymentService_ApplyBrowserResultSettles(t *testing.T) {
	f := newPaymentFixture(testServerKey)
	f.addOrder(t, "ORD-1", "user-1", 10000)
	f.gateway.On("TransactionStatus", "ORD-1").
		Return(&payment.StatusResponse{OrderID: "ORD-1", TransactionStatus: "settlement", FraudStatus: "accept", GrossAmount: "10000.00"}, nil)

	got, err := f.service.ApplyBrowserResult("user-1", "ORD-1", payment.Result{TransactionStatus: "settlement"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, got)
	assert.Equal(t, models.StatusPaid, f.status(t, "ORD-1"))
	assert.Equal(t, "browser", f.publisher.Events()[0].Source)
}

func TestPaymentService_ClientConfig(t *testing.T) {
	f := newPaymentFixture(testServerKey)

	cfg := f.service.ClientConfig()
	assert.Equal(t, "SB-Mid-client-test", cfg.ClientKey)
	assert.False(t, cfg.IsProduction)
	assert.Equal(t, payment.SandboxScriptURL, cfg.ScriptURL)
}
