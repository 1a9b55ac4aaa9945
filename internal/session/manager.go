// Package session keeps per-user conversation sessions in memory and
// serializes access per user: two events for the same user never run their
// dialog logic interleaved, while different users proceed in parallel.
package session

import (
	"sync"

	"github.com/m3rciful/bistrobot/internal/conversation"
)

type entry struct {
	mu   sync.Mutex
	sess conversation.Session
}

// Manager maps Telegram user ids to sessions.
type Manager struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

// NewManager returns an empty session store.
func NewManager() *Manager {
	return &Manager{entries: make(map[int64]*entry)}
}

func (m *Manager) entryFor(userID int64) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[userID]
	if !ok {
		e = &entry{sess: conversation.NewSession()}
		m.entries[userID] = e
	}
	return e
}

// Do runs fn with exclusive access to the user's session. The per-user lock
// is held for the whole call, including any storage I/O fn performs, so one
// user's event fully completes before their next one starts. Other users are
// not blocked.
func (m *Manager) Do(userID int64, fn func(sess *conversation.Session)) {
	e := m.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.sess)
}

// Peek returns a copy of the user's current session.
func (m *Manager) Peek(userID int64) conversation.Session {
	e := m.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess
}

// Reset puts the user's session back to the initial state.
func (m *Manager) Reset(userID int64) {
	m.Do(userID, func(sess *conversation.Session) {
		*sess = conversation.NewSession()
	})
}
