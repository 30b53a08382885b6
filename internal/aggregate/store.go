package aggregate

import (
	"sync/atomic"

	"gridpulse/internal/types"
)

// Store holds the latest published GridState snapshot. Each cycle's result
// fully replaces the prior one; readers always observe the last complete
// snapshot and never a partially built one.
type Store struct {
	current atomic.Pointer[types.GridState]
}

// NewStore creates an empty snapshot store.
func NewStore() *Store {
	return &Store{}
}

// Publish replaces the current snapshot.
func (s *Store) Publish(state types.GridState) {
	s.current.Store(&state)
}

// Latest returns the most recently published snapshot, or false when no
// cycle has completed yet.
func (s *Store) Latest() (types.GridState, bool) {
	p := s.current.Load()
	if p == nil {
		return types.GridState{}, false
	}
	return *p, true
}
