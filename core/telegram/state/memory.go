package state

import "sync"

// MemoryManager is an in-process Manager.
type MemoryManager[T Cloner[T]] struct {
	mu       sync.RWMutex
	sessions map[int64]T
}

var _ Manager[noopSession] = (*MemoryManager[noopSession])(nil)

// NewMemoryManager constructs an empty in-memory manager.
func NewMemoryManager[T Cloner[T]]() *MemoryManager[T] {
	return &MemoryManager[T]{sessions: make(map[int64]T)}
}

// Load returns a deep copy of the stored session.
func (m *MemoryManager[T]) Load(userID int64) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		var zero T
		return zero, false
	}
	return s.Clone(), true
}

// Store replaces the user's session with a deep copy of v.
func (m *MemoryManager[T]) Store(userID int64, v T) {
	c := v.Clone()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = c
}

// Clear removes the entire session for a user.
func (m *MemoryManager[T]) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Has checks whether a session exists for the user.
func (m *MemoryManager[T]) Has(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sessions[userID]
	return ok
}

// Len returns the number of stored sessions.
func (m *MemoryManager[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

type noopSession struct{}

func (noopSession) Clone() noopSession { return noopSession{} }
