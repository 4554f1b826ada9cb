package sessions

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/tally-client/cookies"
	apperrors "github.com/jrsteele09/tally-client/internal/errors"
	"github.com/jrsteele09/tally-client/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultCookieName is the slot the Tally front end has always used
const DefaultCookieName = "TALLY_JWT"

var ErrNoSession = apperrors.ErrNoSession

// Store persists the current session token in a single named cookie and
// derives session facts from it. Writing replaces the previous session.
type Store struct {
	cookies    cookies.Store
	cookieName string
	now        func() time.Time
	log        zerolog.Logger
}

type Option func(*Store)

// WithCookieName overrides DefaultCookieName
func WithCookieName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.cookieName = name
		}
	}
}

// WithClock sets the time source used for ExpiresLeft
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// New creates a session store on top of a cookie store. The store starts
// with whatever the cookie backend already holds.
func New(c cookies.Store, opts ...Option) *Store {
	s := &Store{
		cookies:    c,
		cookieName: DefaultCookieName,
		now:        time.Now,
		log:        log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CookieName returns the name of the slot the token lives in
func (s *Store) CookieName() string {
	return s.cookieName
}

// Write stores the token with SameSite=Strict and an expiry taken from its exp
// claim. The returned bool reports whether the token can be read back right
// away; false means the cookie backend refused it (for example a secure cookie
// over plain HTTP) and must not be treated as a successful login.
func (s *Store) Write(ctx context.Context, raw string, secure bool) (bool, error) {
	payload, err := token.Decode(raw)
	if err != nil {
		return false, fmt.Errorf("session write: %w", err)
	}

	s.log.Debug().Str("cookie", s.cookieName).Bool("secure", secure).Msg("Set cookie for session token")

	cookie := &http.Cookie{
		Name:     s.cookieName,
		Value:    raw,
		Path:     "/",
		Expires:  payload.ExpiresAtTime(),
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
	if err := s.cookies.Set(ctx, cookie); err != nil {
		return false, fmt.Errorf("session write: %w", err)
	}

	stored, ok := s.Read(ctx)
	written := ok && stored == raw
	if !written {
		s.log.Warn().Str("cookie", s.cookieName).Bool("secure", secure).Msg("Session cookie not set, a secure cookie needs an HTTPS connection")
	}
	return written, nil
}

// Read returns the raw token. ok is false when nothing is stored, the cookie
// was removed, or the backend evicted it.
func (s *Store) Read(ctx context.Context) (string, bool) {
	v, ok, err := s.cookies.Get(ctx, s.cookieName)
	if err != nil {
		s.log.Err(err).Str("cookie", s.cookieName).Msg("Failed to read session cookie")
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Remove clears the session. Removing an absent session is a no-op.
func (s *Store) Remove(ctx context.Context) {
	if err := s.cookies.Delete(ctx, s.cookieName); err != nil {
		s.log.Err(err).Str("cookie", s.cookieName).Msg("Failed to remove session cookie")
	}
}

// IsPresent reports whether a token is stored. It relies on the cookie
// backend's own eviction and does not compare exp with the clock.
func (s *Store) IsPresent(ctx context.Context) bool {
	_, ok := s.Read(ctx)
	return ok
}

// Payload decodes the stored token
func (s *Store) Payload(ctx context.Context) (*token.Payload, error) {
	raw, ok := s.Read(ctx)
	if !ok {
		return nil, ErrNoSession
	}
	return token.Decode(raw)
}

// Facts decodes the stored token and computes ExpiresLeft against the clock
// at the time of the call.
func (s *Store) Facts(ctx context.Context) (Facts, error) {
	p, err := s.Payload(ctx)
	if err != nil {
		return Facts{}, err
	}
	return factsFrom(p, s.now()), nil
}

// Watch re-reads the session facts every interval for display purposes, such
// as an "expires in" counter. Nothing is sent while no valid session is
// stored. The channel is closed once ctx is done.
func (s *Store) Watch(ctx context.Context, interval time.Duration) <-chan Facts {
	out := make(chan Facts, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if f, err := s.Facts(ctx); err == nil {
				select {
				case out <- f:
				case <-ctx.Done():
					return
				}
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
