// Package dashboard holds the viewer-side mirror of the inventory: a pure
// reducer, a dispatching store, the HTTP and websocket clients feeding it and
// the aggregates the charts render.
package dashboard

import (
	"github.com/R3E-Network/stockboard/internal/app/domain/item"
)

// Status tracks the most recent list load.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Op names a mutation.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// MutationError describes the last mutation the server rejected.
type MutationError struct {
	Op      Op     `json:"op"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

// State is the viewer's advisory copy of the store plus UI fields.
type State struct {
	Items         []item.Item    `json:"items"`
	Status        Status         `json:"status"`
	Error         string         `json:"error,omitempty"`
	Query         string         `json:"query"`
	MutationError *MutationError `json:"mutationError,omitempty"`
}

// InitialState returns an empty idle state.
func InitialState() State {
	return State{Items: []item.Item{}, Status: StatusIdle}
}

// Action is a state transition input.
type Action interface {
	action()
}

type (
	// LoadPending marks a list load in flight.
	LoadPending struct{}
	// LoadSucceeded replaces the item list wholesale.
	LoadSucceeded struct{ Items []item.Item }
	// LoadFailed records a failed list load.
	LoadFailed struct{ Err string }
	// Created upserts an item the server just created.
	Created struct{ Item item.Item }
	// Updated replaces an item the server just updated, if it is present.
	Updated struct{ Item item.Item }
	// Deleted removes an item the server just deleted.
	Deleted struct{ ID string }
	// SocketUpsert applies an item:created or item:updated event.
	SocketUpsert struct{ Item item.Item }
	// SocketDelete applies an item:deleted event.
	SocketDelete struct{ ID string }
	// SetQuery replaces the search query.
	SetQuery struct{ Q string }
	// MutationFailed records a rejected create, update or delete.
	MutationFailed struct {
		Op  Op
		ID  string
		Err string
	}
	// DismissMutationError clears MutationError.
	DismissMutationError struct{}
)

func (LoadPending) action()          {}
func (LoadSucceeded) action()        {}
func (LoadFailed) action()           {}
func (Created) action()              {}
func (Updated) action()              {}
func (Deleted) action()              {}
func (SocketUpsert) action()         {}
func (SocketDelete) action()         {}
func (SetQuery) action()             {}
func (MutationFailed) action()       {}
func (DismissMutationError) action() {}

// Reduce returns the state that follows s after a. It never modifies s or the
// slices it references.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case LoadPending:
		s.Status = StatusLoading
	case LoadSucceeded:
		s.Status = StatusSucceeded
		s.Error = ""
		s.Items = cloneItems(a.Items)
	case LoadFailed:
		s.Status = StatusFailed
		s.Error = a.Err
	case Created:
		s.Items = upsert(s.Items, a.Item)
	case Updated:
		s.Items = replace(s.Items, a.Item)
	case Deleted:
		s.Items = remove(s.Items, a.ID)
	case SocketUpsert:
		s.Items = upsert(s.Items, a.Item)
	case SocketDelete:
		s.Items = remove(s.Items, a.ID)
	case SetQuery:
		s.Query = a.Q
	case MutationFailed:
		s.MutationError = &MutationError{Op: a.Op, ID: a.ID, Message: a.Err}
	case DismissMutationError:
		s.MutationError = nil
	}
	return s
}

func cloneItems(items []item.Item) []item.Item {
	out := make([]item.Item, len(items))
	copy(out, items)
	return out
}

func indexOf(items []item.Item, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func upsert(items []item.Item, it item.Item) []item.Item {
	idx := indexOf(items, it.ID)
	if idx == -1 {
		out := make([]item.Item, len(items), len(items)+1)
		copy(out, items)
		return append(out, it)
	}
	out := cloneItems(items)
	out[idx] = it
	return out
}

func replace(items []item.Item, it item.Item) []item.Item {
	idx := indexOf(items, it.ID)
	if idx == -1 {
		return items
	}
	out := cloneItems(items)
	out[idx] = it
	return out
}

func remove(items []item.Item, id string) []item.Item {
	idx := indexOf(items, id)
	if idx == -1 {
		return items
	}
	out := make([]item.Item, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...)
}
