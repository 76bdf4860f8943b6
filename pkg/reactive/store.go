package reactive

import (
	"log/slog"
	"sync"
)

// Action describes a state change requested through Store.Dispatch.
type Action struct {
	Type    string
	Payload any
}

// UpdateAction is the action type dispatched by Store.Update.
const UpdateAction = "@@update"

// Reducer applies an action to the store state.
type Reducer func(state *Cell, action Action)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithReducer sets the reducer used by Dispatch. Without one, actions only
// reach subscribers.
func WithReducer(r Reducer) StoreOption {
	return func(s *Store) { s.reducer = r }
}

// WithStoreLogger sets the logger used to report dispatched actions at
// debug level.
func WithStoreLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// Store is a reactive state container. Its state is a Cell, so effects
// reading it re-run on change; subscribers are additionally told about every
// dispatched action.
type Store struct {
	state   *Cell
	reducer Reducer
	logger  *slog.Logger

	mu     sync.Mutex
	subs   []storeSub
	nextID uint64
}

type storeSub struct {
	id uint64
	fn func(Action)
}

// NewStore creates a store over initial.
func NewStore(initial map[string]any, opts ...StoreOption) *Store {
	s := &Store{state: NewCell(initial)}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// State returns the reactive state.
func (s *Store) State() *Cell {
	return s.state
}

// Subscribe registers fn to be called after every dispatched action and
// returns a function removing it.
func (s *Store) Subscribe(fn func(Action)) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, storeSub{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Dispatch runs the reducer, then notifies subscribers.
func (s *Store) Dispatch(action Action) {
	s.logger.Debug("store dispatch", "action", action.Type)
	if s.reducer != nil {
		s.reducer(s.state, action)
	}
	s.notify(action)
}

// Update applies fn to the state directly and notifies subscribers with an
// UpdateAction.
func (s *Store) Update(fn func(state *Cell)) {
	fn(s.state)
	s.notify(Action{Type: UpdateAction})
}

func (s *Store) notify(action Action) {
	s.mu.Lock()
	subs := make([]storeSub, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(action)
	}
}

// Decode copies the current state into out.
func (s *Store) Decode(out any) error {
	return s.state.Decode(out)
}
