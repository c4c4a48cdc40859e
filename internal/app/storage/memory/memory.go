package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/R3E-Network/stockboard/internal/app/domain/item"
	"github.com/R3E-Network/stockboard/internal/app/storage"
)

// Store is an in-memory item collection. Items are kept in insertion order
// and every operation runs under a single lock, so concurrent creates never
// share an id and racing update/delete calls on one id resolve in lock order.
type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []item.Item
}

var _ storage.ItemStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{nextID: 1}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

func (s *Store) indexLocked(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// ListItems returns the items matching filter in insertion order.
func (s *Store) ListItems(_ context.Context, filter item.Filter) ([]item.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]item.Item, 0, len(s.items))
	for _, it := range s.items {
		if filter.Matches(it) {
			result = append(result, it)
		}
	}
	return result, nil
}

// CreateItem appends a new item. Callers validate required fields.
func (s *Store) CreateItem(_ context.Context, in item.Input) (item.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(in), nil
}

func (s *Store) createLocked(in item.Input) item.Item {
	it := item.Item{
		ID:       s.nextIDLocked(),
		Name:     in.Name,
		Quantity: item.CoerceQuantity(in.Quantity),
		Category: in.Category,
	}
	s.items = append(s.items, it)
	return it
}

// UpdateItem applies patch to the item with id and returns the result.
func (s *Store) UpdateItem(_ context.Context, id string, patch item.Patch) (item.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx == -1 {
		return item.Item{}, fmt.Errorf("update item %s: %w", id, item.ErrNotFound)
	}
	s.items[idx] = patch.Apply(s.items[idx])
	return s.items[idx], nil
}

// DeleteItem removes the item with id. Ids are never reused until ClearItems.
func (s *Store) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx == -1 {
		return fmt.Errorf("delete item %s: %w", id, item.ErrNotFound)
	}
	s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
	return nil
}

// ClearItems drops every item and resets the id counter.
func (s *Store) ClearItems(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.nextID = 1
	return nil
}

// CountItems returns the number of stored items.
func (s *Store) CountItems(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items), nil
}

// Seed creates inputs in order when the store is empty. It reports whether
// anything was inserted.
func (s *Store) Seed(_ context.Context, inputs []item.Input) (bool, error) {
	for _, in := range inputs {
		if !in.Valid() {
			return false, fmt.Errorf("seed item %q: name and category required", in.Name)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) > 0 || len(inputs) == 0 {
		return false, nil
	}
	for _, in := range inputs {
		s.createLocked(in)
	}
	return true, nil
}
