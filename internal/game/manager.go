package game

import (
	"time"

	"github.com/google/uuid"

	"trivia-party-service/internal/domain"
	"trivia-party-service/internal/quiz"
)

// SessionStore abstracts how live sessions are tracked (in-memory, or
// in-memory with redis liveness markers).
type SessionStore interface {
	Put(s *Session)
	Get(id string) (*Session, bool)
	Delete(id string) bool
	All() []*Session
}

// Manager creates, looks up, and reaps sessions. Session IDs are v4 UUIDs,
// which makes collisions a non-concern.
type Manager struct {
	store    SessionStore
	engine   *quiz.Engine
	defaults domain.GameOptions
}

func NewManager(store SessionStore, engine *quiz.Engine, defaults domain.GameOptions) *Manager {
	return &Manager{store: store, engine: engine, defaults: defaults}
}

// Create builds a new game with the default options, optionally seeding the
// lobby with players, and registers it under a fresh session ID.
func (m *Manager) Create(playerNames []string) *Session {
	g := NewGame(m.engine, m.defaults)
	for _, name := range playerNames {
		_, _ = g.AddPlayer(name)
	}

	session := &Session{
		ID:        uuid.NewString(),
		Game:      g,
		CreatedAt: time.Now(),
	}
	m.store.Put(session)
	return session
}

// Get looks a session up by ID.
func (m *Manager) Get(id string) (*Session, error) {
	session, ok := m.store.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Delete removes a session. Deleting an unknown ID reports false.
func (m *Manager) Delete(id string) bool {
	return m.store.Delete(id)
}

// SweepFinished deletes every session whose game has finished and returns
// how many were removed. Meant to be called periodically by the server.
func (m *Manager) SweepFinished() int {
	removed := 0
	for _, session := range m.store.All() {
		if session.Game.IsFinished() && m.store.Delete(session.ID) {
			removed++
		}
	}
	return removed
}
