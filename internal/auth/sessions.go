// Package auth provides in-memory bearer session management with
// token rotation.
package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidSession indicates an unknown or revoked token.
	ErrInvalidSession = errors.New("invalid session")

	// ErrExpiredSession indicates a token past its TTL.
	ErrExpiredSession = errors.New("session expired")
)

// DefaultSessionTTL applies when no TTL is configured.
const DefaultSessionTTL = 24 * time.Hour

// Session is an issued bearer credential.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager issues and validates sessions. All methods are safe for
// concurrent use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewManager creates a Manager with the given session TTL.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Issue creates a session for the user and returns its token.
func (m *Manager) Issue(userID string) Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: m.now().Add(m.ttl),
	}
	m.sessions[s.Token] = s
	return s
}

// Validate resolves a token to its user ID. Expired sessions are
// removed on access.
func (m *Manager) Validate(token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return "", ErrInvalidSession
	}
	if m.now().After(s.ExpiresAt) {
		delete(m.sessions, token)
		return "", ErrExpiredSession
	}
	return s.UserID, nil
}

// Rotate exchanges a valid token for a fresh one. The old token is
// revoked atomically so it cannot be replayed.
func (m *Manager) Rotate(token string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.sessions[token]
	if !ok {
		return Session{}, ErrInvalidSession
	}
	if m.now().After(old.ExpiresAt) {
		delete(m.sessions, token)
		return Session{}, ErrExpiredSession
	}

	delete(m.sessions, token)
	next := Session{
		Token:     uuid.NewString(),
		UserID:    old.UserID,
		ExpiresAt: m.now().Add(m.ttl),
	}
	m.sessions[next.Token] = next
	return next, nil
}

// Revoke removes a session. Revoking an unknown token is a no-op.
func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}
