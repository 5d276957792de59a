package repositories

import (
	"fmt"
	"sort"
	"sync"

	"kantin/internal/apperr"
	"kantin/internal/models"

	"github.com/google/uuid"
)

// MockMenuItemRepository is an in-memory implementation of MenuItemRepository.
type MockMenuItemRepository struct {
	items map[string]models.MenuItem
	mu    sync.RWMutex
}

// NewMockMenuItemRepository creates a new instance of MockMenuItemRepository.
func NewMockMenuItemRepository() *MockMenuItemRepository {
	return &MockMenuItemRepository{
		items: make(map[string]models.MenuItem),
	}
}

// GetAll returns menu items matching filter.
func (r *MockMenuItemRepository) GetAll(filter MenuFilter) ([]models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.MenuItem, 0, len(r.items))
	for _, item := range r.items {
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if filter.OnlyAvailable && !item.IsAvailable {
			continue
		}
		list = append(list, item)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// GetByID returns a menu item by its ID.
func (r *MockMenuItemRepository) GetByID(id string) (*models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("menu item with ID %s not found: %w", id, apperr.ErrNotFound)
	}
	return &item, nil
}

// Create adds a new menu item.
func (r *MockMenuItemRepository) Create(item *models.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	r.items[item.ID] = *item
	return nil
}

// Update modifies an existing menu item.
func (r *MockMenuItemRepository) Update(item *models.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return fmt.Errorf("menu item with ID %s not found for update: %w", item.ID, apperr.ErrNotFound)
	}
	r.items[item.ID] = *item
	return nil
}

// Delete removes a menu item by its ID.
func (r *MockMenuItemRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("menu item with ID %s not found for deletion: %w", id, apperr.ErrNotFound)
	}
	delete(r.items, id)
	return nil
}
