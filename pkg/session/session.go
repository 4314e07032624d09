// Package session holds the access and refresh tokens of the signed in user
// and drives the login, logout and refresh lifecycle.
package session

import "sync"

// Tokens is a snapshot of the credentials held by a Session.
type Tokens struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Empty reports whether no credential is held.
func (t Tokens) Empty() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}

// Session is the single owner of the user's tokens. It is safe for
// concurrent use; watchers are notified after every change with the new
// snapshot, outside the lock.
type Session struct {
	mu       sync.RWMutex
	tokens   Tokens
	watchers []func(Tokens)
}

// New returns an empty session.
func New() *Session {
	return &Session{}
}

// Watch registers fn to be called with the tokens after every change.
func (s *Session) Watch(fn func(Tokens)) {
	s.mu.Lock()
	s.watchers = append(s.watchers, fn)
	s.mu.Unlock()
}

// Tokens returns the current credentials.
func (s *Session) Tokens() Tokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

// AccessToken returns the current access token, or "".
func (s *Session) AccessToken() string {
	return s.Tokens().AccessToken
}

// RefreshToken returns the current refresh token, or "".
func (s *Session) RefreshToken() string {
	return s.Tokens().RefreshToken
}

// Set replaces both tokens.
func (s *Session) Set(t Tokens) {
	s.update(func(cur *Tokens) bool {
		if *cur == t {
			return false
		}
		*cur = t
		return true
	})
}

// SetAccessToken replaces only the access token.
func (s *Session) SetAccessToken(access string) {
	s.update(func(cur *Tokens) bool {
		if cur.AccessToken == access {
			return false
		}
		cur.AccessToken = access
		return true
	})
}

// Clear drops both tokens. It reports whether anything was held.
func (s *Session) Clear() bool {
	return s.update(func(cur *Tokens) bool {
		if cur.Empty() {
			return false
		}
		*cur = Tokens{}
		return true
	})
}

func (s *Session) update(fn func(*Tokens) bool) bool {
	s.mu.Lock()
	changed := fn(&s.tokens)
	snapshot := s.tokens
	watchers := append([]func(Tokens){}, s.watchers...)
	s.mu.Unlock()

	if changed {
		for _, w := range watchers {
			w(snapshot)
		}
	}
	return changed
}
