package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/jrsteele09/tally-client/auth"
	"github.com/jrsteele09/tally-client/cookies"
	"github.com/jrsteele09/tally-client/cookies/filestore"
	"github.com/jrsteele09/tally-client/cookies/memory"
	"github.com/jrsteele09/tally-client/cookies/redisstore"
	"github.com/jrsteele09/tally-client/guard"
	"github.com/jrsteele09/tally-client/internal/config"
	apperrors "github.com/jrsteele09/tally-client/internal/errors"
	"github.com/jrsteele09/tally-client/sessions"
	"github.com/jrsteele09/tally-client/tallyapi"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
)

var (
	errNotLoggedIn     = errors.New("not logged in, run `tally login` first")
	errAlreadyLoggedIn = errors.New("already logged in")
	errNotAllowed      = errors.New("not allowed")
)

// app wires the session core to the configured cookie backend and the
// backend client for one CLI invocation.
type app struct {
	cfg         config.Config
	sessions    *sessions.Store
	policy      *auth.Policy
	guard       *guard.Guard
	api         *tallyapi.Client
	out         io.Writer
	closers     []func() error
	stopSpinner func()
}

func newApp(ctx context.Context, cfg config.Config, out io.Writer) (*app, error) {
	a := &app{cfg: cfg, out: out}

	u, err := url.Parse(cfg.GetBaseURL())
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	store, closer, err := openCookieStore(ctx, cfg, u.Scheme == "https")
	if err != nil {
		return nil, err
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	a.sessions = sessions.New(store, sessions.WithCookieName(cfg.GetCookieName()))
	apiOpts := []tallyapi.Option{tallyapi.WithTimeout(cfg.GetHTTPTimeout())}
	if cfg.GetEnv() == "DEV" {
		apiOpts = append(apiOpts, tallyapi.WithRequestLog(isatty.IsTerminal(os.Stderr.Fd())))
	}
	a.api, err = tallyapi.New(cfg.GetBaseURL(), a.sessions, apiOpts...)
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}
	a.policy = auth.NewPolicy(a.sessions)
	a.guard = guard.New(a.policy, guard.WithRoutes(cfg))
	return a, nil
}

// openCookieStore selects the cookie backend. Secure cookies survive only
// when the backend is reached over HTTPS.
func openCookieStore(ctx context.Context, cfg config.SessionConfig, secure bool) (cookies.Store, func() error, error) {
	switch cfg.GetStore() {
	case config.StoreMemory:
		return memory.New(memory.WithSecureContext(secure)), nil, nil
	case config.StoreFile:
		path, err := storePath(cfg.GetStoreFile())
		if err != nil {
			return nil, nil, err
		}
		return filestore.New(path, filestore.WithSecureContext(secure)), nil, nil
	case config.StoreRedis:
		store, closer, err := redisstore.Dial(ctx, cfg.GetRedisAddr(),
			redisstore.WithKeyPrefix(cfg.GetRedisKeyPrefix()),
			redisstore.WithSecureContext(secure),
		)
		if err != nil {
			return nil, nil, err
		}
		return store, closer, nil
	default:
		return nil, nil, fmt.Errorf("unknown cookie store %q, expected %s, %s or %s", cfg.GetStore(), config.StoreMemory, config.StoreFile, config.StoreRedis)
	}
}

// storePath resolves a relative store file against the home directory
func storePath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, p), nil
}

// require runs the navigation guard for the route a command stands for
func (a *app) require(ctx context.Context, path string) error {
	a.dropUnreadableSession(ctx)

	var redirect string
	nav := guard.NavigatorFunc(func(p string) { redirect = p })
	if a.guard.CanActivate(ctx, guard.Resolve(path), nav) {
		return nil
	}
	switch redirect {
	case a.cfg.GetLoginRoute():
		return errNotLoggedIn
	case a.cfg.GetHomeRoute():
		return errAlreadyLoggedIn
	}
	return fmt.Errorf("%s: %w", path, errNotAllowed)
}

// dropUnreadableSession removes a stored token that no longer decodes, so the
// guard sees no session and the user is sent to log in again.
func (a *app) dropUnreadableSession(ctx context.Context) {
	_, err := a.sessions.Payload(ctx)
	if apperrors.Is(err, apperrors.ErrMalformedToken) || apperrors.Is(err, apperrors.ErrMissingField) {
		log.Warn().Err(err).Str("cookie", a.sessions.CookieName()).Msg("Removing unreadable session token")
		a.sessions.Remove(ctx)
	}
}

// expireRejectedSession removes the stored session when the backend answered
// 401 to it, which happens once the backend no longer accepts the token.
func (a *app) expireRejectedSession(ctx context.Context, err error) error {
	if !tallyapi.HasStatus(err, http.StatusUnauthorized) || !a.sessions.IsPresent(ctx) {
		return err
	}
	a.sessions.Remove(ctx)
	return fmt.Errorf("%w: session removed, run `tally login`", err)
}

func (a *app) Close() error {
	if a.stopSpinner != nil {
		a.stopSpinner()
	}
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Err(err).Msg("Failed to close cookie store")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
