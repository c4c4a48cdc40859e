package dashboard

import "sync"

// Store holds the current State and serializes dispatches.
type Store struct {
	// dispatchMu serializes a reduce together with its notifications.
	dispatchMu  sync.Mutex
	mu          sync.Mutex
	state       State
	nextID      int
	subscribers map[int]func(State)
}

// NewStore creates a store in the initial state.
func NewStore() *Store {
	return &Store{state: InitialState(), subscribers: make(map[int]func(State))}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a and notifies subscribers with the new state.
// Notifications are delivered in the order the actions were reduced, outside
// the state lock, so listeners may call State but must not call Dispatch.
func (s *Store) Dispatch(a Action) State {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	listeners := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next
}

// Subscribe registers fn for state changes and returns a function removing it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}
