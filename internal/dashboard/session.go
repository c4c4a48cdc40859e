package dashboard

import (
	"context"

	"github.com/R3E-Network/stockboard/internal/app/domain/item"
)

// API is the subset of the inventory API a Session drives.
type API interface {
	FetchItems(ctx context.Context, q string) ([]item.Item, error)
	AddItem(ctx context.Context, in NewItem) (item.Item, error)
	UpdateItem(ctx context.Context, id string, patch item.Patch) (item.Item, error)
	DeleteItem(ctx context.Context, id string) error
}

// Session runs API calls and dispatches their outcome into a Store.
type Session struct {
	api   API
	store *Store
}

// NewSession binds api to store.
func NewSession(api API, store *Store) *Session {
	return &Session{api: api, store: store}
}

// Store returns the session's state store.
func (s *Session) Store() *Store { return s.store }

// Load fetches items matching q. Overlapping loads are not cancelled, so the
// last one to finish wins.
func (s *Session) Load(ctx context.Context, q string) error {
	s.store.Dispatch(LoadPending{})
	items, err := s.api.FetchItems(ctx, q)
	if err != nil {
		s.store.Dispatch(LoadFailed{Err: err.Error()})
		return err
	}
	s.store.Dispatch(LoadSucceeded{Items: items})
	return nil
}

// Create adds an item.
func (s *Session) Create(ctx context.Context, in NewItem) (item.Item, error) {
	created, err := s.api.AddItem(ctx, in)
	if err != nil {
		s.store.Dispatch(MutationFailed{Op: OpCreate, Err: err.Error()})
		return item.Item{}, err
	}
	s.store.Dispatch(Created{Item: created})
	return created, nil
}

// Patch updates the item with id.
func (s *Session) Patch(ctx context.Context, id string, patch item.Patch) (item.Item, error) {
	updated, err := s.api.UpdateItem(ctx, id, patch)
	if err != nil {
		s.store.Dispatch(MutationFailed{Op: OpUpdate, ID: id, Err: err.Error()})
		return item.Item{}, err
	}
	s.store.Dispatch(Updated{Item: updated})
	return updated, nil
}

// Remove deletes the item with id.
func (s *Session) Remove(ctx context.Context, id string) error {
	if err := s.api.DeleteItem(ctx, id); err != nil {
		s.store.Dispatch(MutationFailed{Op: OpDelete, ID: id, Err: err.Error()})
		return err
	}
	s.store.Dispatch(Deleted{ID: id})
	return nil
}
