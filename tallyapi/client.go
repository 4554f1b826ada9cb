// Package tallyapi is the HTTP client for the Tally backend. Every request
// goes through an activity.Transport so a UI can show one busy indicator for
// all traffic, and authenticated calls carry the session token as a bearer.
package tallyapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/tally-client/activity"
	apperrors "github.com/jrsteele09/tally-client/internal/errors"
	"github.com/jrsteele09/tally-client/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	headerUserID        = "X-UserId"
	headerRequestedWith = "X-Requested-With"
	requestedWithXHR    = "XMLHttpRequest"
	invitationCodeUser  = "invitation-code"
	defaultTimeout      = 30 * time.Second
)

// TokenSource supplies the current session token. *sessions.Store satisfies it.
type TokenSource interface {
	Read(ctx context.Context) (string, bool)
	Payload(ctx context.Context) (*token.Payload, error)
}

// StatusError is returned for any non-2xx reply
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("tally backend replied %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("tally backend replied %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

func (e *StatusError) Unwrap() error { return apperrors.ErrUnexpectedReply }

// HasStatus reports whether err carries a backend reply with the given status
func HasStatus(err error, code int) bool {
	var statusErr *StatusError
	return apperrors.As(err, &statusErr) && statusErr.StatusCode == code
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	tracker *activity.Tracker
	log     zerolog.Logger

	timeout     time.Duration
	logRequests bool
	logColor    bool
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its transport is still
// wrapped for activity tracking.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		copied := *c
		cl.http = &copied
	}
}

func WithTracker(t *activity.Tracker) Option {
	return func(c *Client) {
		c.tracker = t
	}
}

// WithTimeout bounds every request. It applies whatever the order of
// options, so it also overrides the timeout of a WithHTTPClient client.
// A zero d keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRequestLog logs each request at info level, with the method coloured
// for a terminal when color is set.
func WithRequestLog(color bool) Option {
	return func(c *Client) {
		c.logRequests = true
		c.logColor = color
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a client for the backend at baseURL. Without WithTracker the
// client owns a private tracker, available from Tracker.
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, apperrors.Wrapf(err, "invalid base url %q", baseURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute: %w", baseURL, apperrors.ErrInvalidRequest)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
		tokens:  tokens,
		log:     log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		c.http.Timeout = c.timeout
	}
	if c.tracker == nil {
		c.tracker = activity.NewTracker(activity.WithLogger(c.log))
	}
	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if c.logRequests {
		base = &logTransport{base: base, log: c.log, color: c.logColor}
	}
	c.http.Transport = &activity.Transport{Base: base, Tracker: c.tracker}
	return c, nil
}

func (c *Client) Tracker() *activity.Tracker {
	return c.tracker
}

// Secure reports whether the backend is reached over HTTPS, which decides
// whether a secure session cookie can be kept.
func (c *Client) Secure() bool {
	return c.baseURL.Scheme == "https"
}

type request struct {
	method  string
	path    string
	body    io.Reader
	ctype   string
	headers http.Header
}

func jsonBody(v any) (io.Reader, string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, "", apperrors.Wrapf(err, "encoding request body")
	}
	return bytes.NewReader(b), "application/json", nil
}

func textBody(s string) (io.Reader, string) {
	return strings.NewReader(s), "text/plain"
}

func basicAuth(user, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}

// authHeaders builds the bearer headers from the stored session
func (c *Client) authHeaders(ctx context.Context) (http.Header, error) {
	raw, ok := c.tokens.Read(ctx)
	if !ok {
		return nil, apperrors.ErrNoSession
	}
	p, err := c.tokens.Payload(ctx)
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer "+raw)
	h.Set(headerUserID, p.Subject)
	return h, nil
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	u := c.baseURL.JoinPath(r.path)
	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), r.body)
	if err != nil {
		return apperrors.Wrapf(err, "building %s %s", r.method, r.path)
	}
	for k, vs := range r.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if r.ctype != "" {
		req.Header.Set("Content-Type", r.ctype)
	}
	if out != nil {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Wrapf(err, "%s %s", r.method, r.path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Debug().Str("method", r.method).Str("path", r.path).Int("status", resp.StatusCode).Msg("Request failed")
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s reply: %w: %w", r.method, r.path, apperrors.ErrUnexpectedReply, err)
	}
	return nil
}

func (c *Client) authed(ctx context.Context, method, path string, body io.Reader, ctype string, out any) error {
	h, err := c.authHeaders(ctx)
	if err != nil {
		return err
	}
	return c.do(ctx, request{method: method, path: path, body: body, ctype: ctype, headers: h}, out)
}

func (c *Client) authedJSON(ctx context.Context, path string, in any) error {
	body, ctype, err := jsonBody(in)
	if err != nil {
		return err
	}
	return c.authed(ctx, http.MethodPost, path, body, ctype, nil)
}
