package session

import (
	"sync"

	"github.com/google/uuid"
)

// Manager tracks live quiz sessions by opaque id so the HTTP facade can
// route answer/submit calls back to the right instance. Sessions are
// removed on completion or abort; a late request against a removed id is
// the "stale response" case and simply misses.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: map[string]*Session{}}
}

func (m *Manager) Add(s *Session) string {
	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return id
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
