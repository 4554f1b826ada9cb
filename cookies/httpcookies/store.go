// Package httpcookies exposes the cookies of one HTTP exchange as a
// cookies.Store: reads come from the request, writes become Set-Cookie headers.
package httpcookies

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/tally-client/cookies"
)

// Store is scoped to a single request. Writes are visible to later reads of the
// same Store, matching what a browser shows the page that set them.
type Store struct {
	r *http.Request
	w http.ResponseWriter

	mu      sync.Mutex
	written map[string]*http.Cookie
	now     func() time.Time
}

var _ cookies.Store = (*Store)(nil)

func New(w http.ResponseWriter, r *http.Request) *Store {
	return &Store{
		r:       r,
		w:       w,
		written: make(map[string]*http.Cookie),
		now:     time.Now,
	}
}

// IsSecureRequest reports whether the request arrived over HTTPS, directly or
// through a proxy that sets X-Forwarded-Proto.
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}

func (s *Store) Set(_ context.Context, cookie *http.Cookie) error {
	if cookie.Secure && !IsSecureRequest(s.r) {
		return nil
	}
	c := *cookie
	if c.Path == "" {
		c.Path = "/"
	}
	http.SetCookie(s.w, &c)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.written[c.Name] = &c
	return nil
}

func (s *Store) Get(_ context.Context, name string) (string, bool, error) {
	s.mu.Lock()
	c, ok := s.written[name]
	s.mu.Unlock()
	if ok {
		if c.MaxAge < 0 || cookies.Expired(c.Expires, s.now()) {
			return "", false, nil
		}
		return c.Value, true, nil
	}

	rc, err := s.r.Cookie(name)
	if err != nil || rc.Value == "" {
		return "", false, nil
	}
	return rc.Value, true, nil
}

// Delete expires the cookie in the client
func (s *Store) Delete(_ context.Context, name string) error {
	c := &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		SameSite: http.SameSiteStrictMode,
	}
	http.SetCookie(s.w, c)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.written[name] = c
	return nil
}
