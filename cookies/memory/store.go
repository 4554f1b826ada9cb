// Package memory is an in-process cookie store.
package memory

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/tally-client/cookies"
)

type entry struct {
	value   string
	expires time.Time
}

// Store is an in-memory implementation of cookies.Store
type Store struct {
	mu      sync.RWMutex
	cookies map[string]entry

	secureContext bool
	now           func() time.Time
}

var _ cookies.Store = (*Store)(nil)

type Option func(*Store)

// WithSecureContext marks the store as reached over HTTPS, which allows Secure
// cookies to be set.
func WithSecureContext(secure bool) Option {
	return func(s *Store) {
		s.secureContext = secure
	}
}

// WithClock overrides the time source used for expiry eviction
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store. Without WithSecureContext(true) Secure cookies
// are silently dropped.
func New(opts ...Option) *Store {
	s := &Store{
		cookies: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set stores the cookie unless it is Secure and the store is not
func (s *Store) Set(_ context.Context, cookie *http.Cookie) error {
	if cookie.Secure && !s.secureContext {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cookies.Expired(cookie.Expires, s.now()) {
		delete(s.cookies, cookie.Name)
		return nil
	}
	s.cookies[cookie.Name] = entry{value: cookie.Value, expires: cookie.Expires}
	return nil
}

// Get returns the cookie value, evicting it first if it has expired
func (s *Store) Get(_ context.Context, name string) (string, bool, error) {
	s.mu.RLock()
	e, ok := s.cookies[name]
	s.mu.RUnlock()
	if !ok {
		return "", false, nil
	}

	if cookies.Expired(e.expires, s.now()) {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have replaced it.
		if cur, ok := s.cookies[name]; ok && cur == e {
			delete(s.cookies, name)
		}
		s.mu.Unlock()
		return "", false, nil
	}
	return e.value, true, nil
}

// Delete removes the cookie
func (s *Store) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cookies, name)
	return nil
}

// Len returns the number of cookies held, expired ones included
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cookies)
}
