package conversation

import "sync"

// Sessions is the in-memory Store. State lives for the process lifetime and
// is created lazily on first access.
type Sessions struct {
	mu     sync.RWMutex
	states map[int64]State
}

var _ Store = (*Sessions)(nil)

func NewSessions() *Sessions {
	return &Sessions{
		states: make(map[int64]State),
	}
}

func (s *Sessions) Get(userID int64) State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.states[userID]
}

func (s *Sessions) Put(userID int64, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[userID] = state
}

func (s *Sessions) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[userID] = State{}
}
