package leaderboardapi

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionStore persists the session token between runs.
type SessionStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Session is the authentication state shared by every call a user makes.
// A zero or nil Session is logged out and sends no token.
type Session struct {
	mu     sync.RWMutex
	active bool
	token  string
	store  SessionStore
}

// NewSession creates a session, resuming a persisted token from store.
func NewSession(store SessionStore) (*Session, error) {
	s := &Session{store: store}
	if store == nil {
		return s, nil
	}
	token, err := store.Load()
	if err != nil {
		return s, err
	}
	if token != "" {
		s.active, s.token = true, token
	}
	return s, nil
}

// SessionFromToken wraps a caller supplied bearer token, e.g. from an
// incoming Authorization header. It is not persisted.
func SessionFromToken(token string) *Session {
	return &Session{active: token != "", token: token}
}

// Begin logs in. An empty token is a local login that sends no header.
func (s *Session) Begin(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active, s.token = true, token
	if s.store != nil && token != "" {
		return s.store.Save(token)
	}
	return nil
}

// End logs out and forgets the persisted token.
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active, s.token = false, ""
	if s.store != nil {
		return s.store.Clear()
	}
	return nil
}

// Token returns the bearer token, empty when none.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether the user is logged in.
func (s *Session) Authenticated() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// ExpiresAt reads the exp claim of a JWT token. The signature is not checked.
func (s *Session) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the token carries an expiry before now.
func (s *Session) Expired(now time.Time) bool {
	exp, ok := s.ExpiresAt()
	return ok && !now.Before(exp)
}
