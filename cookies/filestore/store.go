// Package filestore persists cookies in a YAML file so a session survives
// process restarts of the command line client.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jrsteele09/tally-client/cookies"
	"gopkg.in/yaml.v3"
)

type record struct {
	Value    string    `yaml:"value"`
	Expires  time.Time `yaml:"expires,omitempty"`
	Secure   bool      `yaml:"secure"`
	SameSite string    `yaml:"same_site,omitempty"`
}

type document struct {
	Cookies map[string]record `yaml:"cookies"`
}

type Store struct {
	mu            sync.Mutex
	path          string
	secureContext bool
	now           func() time.Time
}

var _ cookies.Store = (*Store)(nil)

type Option func(*Store)

// WithSecureContext allows Secure cookies to be stored
func WithSecureContext(secure bool) Option {
	return func(s *Store) {
		s.secureContext = secure
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New returns a store backed by the file at path. The file and its directory
// are created on the first write.
func New(path string, opts ...Option) *Store {
	s := &Store{path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Set(_ context.Context, cookie *http.Cookie) error {
	if cookie.Secure && !s.secureContext {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	now := s.now()
	for name, r := range doc.Cookies {
		if cookies.Expired(r.Expires, now) {
			delete(doc.Cookies, name)
		}
	}
	if cookies.Expired(cookie.Expires, now) {
		delete(doc.Cookies, cookie.Name)
	} else {
		doc.Cookies[cookie.Name] = record{
			Value:    cookie.Value,
			Expires:  cookie.Expires,
			Secure:   cookie.Secure,
			SameSite: sameSiteName(cookie.SameSite),
		}
	}
	return s.save(doc)
}

func (s *Store) Get(_ context.Context, name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", false, err
	}
	r, ok := doc.Cookies[name]
	if !ok || cookies.Expired(r.Expires, s.now()) {
		return "", false, nil
	}
	return r.Value, true, nil
}

func (s *Store) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Cookies[name]; !ok {
		return nil
	}
	delete(doc.Cookies, name)
	return s.save(doc)
}

func (s *Store) load() (*document, error) {
	doc := &document{Cookies: make(map[string]record)}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cookie file: %w", err)
	}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse cookie file %s: %w", s.path, err)
	}
	if doc.Cookies == nil {
		doc.Cookies = make(map[string]record)
	}
	return doc, nil
}

// save writes through a temp file so a crash never leaves a half-written file
func (s *Store) save(doc *document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode cookie file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create cookie dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cookies-*")
	if err != nil {
		return fmt.Errorf("create temp cookie file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write cookie file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cookie file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace cookie file: %w", err)
	}
	return nil
}

func sameSiteName(m http.SameSite) string {
	switch m {
	case http.SameSiteStrictMode:
		return "Strict"
	case http.SameSiteLaxMode:
		return "Lax"
	case http.SameSiteNoneMode:
		return "None"
	default:
		return ""
	}
}
