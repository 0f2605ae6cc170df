package store

import "sync"

// MemStore is an in-memory Storer used in tests and as a scratch store.
type MemStore struct {
	mu    sync.Mutex
	state *State
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{state: NewState()}
}

func (s *MemStore) Load() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state), nil
}

func (s *MemStore) Save(next *State, expect int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Version != expect {
		return ErrVersionConflict
	}
	next.Version = expect + 1
	s.state = cloneState(next)
	return nil
}

// Close is a no-op for MemStore.
func (s *MemStore) Close() error {
	return nil
}

// Compile-time interface check
var _ Storer = (*MemStore)(nil)
