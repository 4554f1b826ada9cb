// Package redisstore keeps cookies in Redis, one key per cookie, letting Redis
// expire them at their Expires time.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/tally-client/cookies"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "tally:cookies:"

type Store struct {
	client        redis.Cmdable
	keyPrefix     string
	secureContext bool
	now           func() time.Time
}

var _ cookies.Store = (*Store)(nil)

type Option func(*Store)

// WithKeyPrefix sets the prefix of every key the store writes
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// WithSecureContext allows Secure cookies to be stored
func WithSecureContext(secure bool) Option {
	return func(s *Store) {
		s.secureContext = secure
	}
}

// WithClock overrides the time source used to turn Expires into a TTL
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(client redis.Cmdable, opts ...Option) *Store {
	s := &Store{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial connects to addr and checks the connection before returning the store.
// The returned close func releases the client.
func Dial(ctx context.Context, addr string, opts ...Option) (*Store, func() error, error) {
	cl := redis.NewClient(&redis.Options{Addr: addr})
	if err := cl.Ping(ctx).Err(); err != nil {
		_ = cl.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(cl, opts...), cl.Close, nil
}

func (s *Store) key(name string) string { return s.keyPrefix + name }

// Set writes the cookie value with a TTL matching its Expires attribute
func (s *Store) Set(ctx context.Context, cookie *http.Cookie) error {
	if cookie.Secure && !s.secureContext {
		return nil
	}

	var ttl time.Duration
	if !cookie.Expires.IsZero() {
		ttl = cookie.Expires.Sub(s.now())
		if ttl <= 0 {
			return s.Delete(ctx, cookie.Name)
		}
	}

	if err := s.client.Set(ctx, s.key(cookie.Name), cookie.Value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set cookie %q: %w", cookie.Name, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, name string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get cookie %q: %w", name, err)
	}
	return val, true, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, s.key(name)).Err(); err != nil {
		return fmt.Errorf("redis delete cookie %q: %w", name, err)
	}
	return nil
}
