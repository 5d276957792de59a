package services_test

import (
	"encoding/json"
	"sync"

	"kantin/internal/models"
	"kantin/internal/payment"
	"kantin/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAll() ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

// MockRecipientRepository is a mock implementation of repositories.RecipientRepository
type MockRecipientRepository struct {
	mock.Mock
}

func (m *MockRecipientRepository) GetByUser(userID string) ([]models.Recipient, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recipient), args.Error(1)
}

func (m *MockRecipientRepository) GetByID(id string) (*models.Recipient, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipient), args.Error(1)
}

func (m *MockRecipientRepository) Create(recipient *models.Recipient) error {
	return m.Called(recipient).Error(0)
}

func (m *MockRecipientRepository) Update(recipient *models.Recipient) error {
	return m.Called(recipient).Error(0)
}

func (m *MockRecipientRepository) Delete(id string) error {
	return m.Called(id).Error(0)
}

// MockCartRepository is a mock implementation of repositories.CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetByUser(userID string) ([]models.CartItem, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CartItem), args.Error(1)
}

func (m *MockCartRepository) AddItem(userID, menuItemID string, quantity int) error {
	return m.Called(userID, menuItemID, quantity).Error(0)
}

func (m *MockCartRepository) SetQuantity(userID, menuItemID string, quantity int) error {
	return m.Called(userID, menuItemID, quantity).Error(0)
}

func (m *MockCartRepository) RemoveItem(userID, menuItemID string) error {
	return m.Called(userID, menuItemID).Error(0)
}

func (m *MockCartRepository) Clear(userID string) error {
	return m.Called(userID).Error(0)
}

// MockGateway is a mock implementation of services.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateTransaction(req payment.TransactionRequest) (*payment.TransactionResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.TransactionResponse), args.Error(1)
}

func (m *MockGateway) TransactionStatus(orderID string) (*payment.StatusResponse, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.StatusResponse), args.Error(1)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []services.OrderEvent
	keys   []string
}

func (p *recordingPublisher) Publish(exchange, routingKey string, body []byte) error {
	var evt services.OrderEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) Events() []services.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]services.OrderEvent(nil), p.events...)
}
