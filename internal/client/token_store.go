package client

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore holds the bearer token issued by the login endpoint.
// The API owns verification; the client only reads the expiry so it can
// stop sending a token it knows is stale.
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewTokenStore creates a store seeded with token (may be empty)
func NewTokenStore(token string) *TokenStore {
	return &TokenStore{token: token}
}

// Token returns the current token
func (s *TokenStore) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set replaces the token
func (s *TokenStore) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Clear drops the token
func (s *TokenStore) Clear() {
	s.Set("")
}

// ExpiresAt returns the exp claim. ok is false for opaque tokens or tokens without exp.
func (s *TokenStore) ExpiresAt() (exp time.Time, ok bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}, false
	}
	return expiry.Time, true
}

// Expired reports whether the token carries an exp claim in the past
func (s *TokenStore) Expired(now time.Time) bool {
	exp, ok := s.ExpiresAt()
	return ok && !now.Before(exp)
}
