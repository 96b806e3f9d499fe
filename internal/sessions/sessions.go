// Package sessions tracks admin sessions as opaque in-memory bearer tokens.
package sessions

import (
	"crypto/subtle"
	"sync"
	"time"

	"github.com/waajacu/minerals/internal/token"
	"github.com/waajacu/minerals/pkg/constants"
	"github.com/waajacu/minerals/pkg/errors"
)

// Manager checks the admin password and issues session tokens.
type Manager struct {
	password []byte
	ttl      time.Duration
	now      func() time.Time

	mu     sync.Mutex
	tokens map[string]time.Time // token -> expiry
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL sets the session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager for the configured admin password.
func NewManager(password string, opts ...Option) *Manager {
	m := &Manager{
		password: []byte(password),
		ttl:      constants.SessionTTL,
		now:      time.Now,
		tokens:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL returns the session lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Login returns a new session token when password matches.
func (m *Manager) Login(password string) (string, error) {
	if len(m.password) == 0 || subtle.ConstantTimeCompare([]byte(password), m.password) != 1 {
		return "", errors.NewUnauthorizedError("invalid password")
	}
	tok, err := token.Hex(constants.SessionTokenBytes)
	if err != nil {
		return "", errors.NewInternalError("login", "generate token", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[tok] = m.now().Add(m.ttl)
	return tok, nil
}

// Valid reports whether tok is a live session. Expired tokens are dropped.
func (m *Manager) Valid(tok string) bool {
	if tok == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, ok := m.tokens[tok]
	if !ok {
		return false
	}
	if !m.now().Before(expiry) {
		delete(m.tokens, tok)
		return false
	}
	return true
}

// Logout ends a session and reports whether it existed.
func (m *Manager) Logout(tok string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tokens[tok]
	delete(m.tokens, tok)
	return ok
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for tok, expiry := range m.tokens {
		if now.Before(expiry) {
			n++
		} else {
			delete(m.tokens, tok)
		}
	}
	return n
}
