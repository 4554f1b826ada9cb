// Package guard decides whether a navigation to a route may proceed, based on
// the stored session.
package guard

import (
	"context"

	"github.com/jrsteele09/tally-client/internal/config"
	"github.com/jrsteele09/tally-client/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultLoginRoute = "/" + RouteLogin
	DefaultHomeRoute  = "/" + RouteSettings
)

// Authorizer is the policy the guard consults
type Authorizer interface {
	IsAuthenticated(ctx context.Context) bool
	HasRoles(ctx context.Context, required ...token.Role) bool
}

// Navigator performs a redirect. Implementations must not block the caller.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

type Guard struct {
	policy     Authorizer
	loginRoute string
	homeRoute  string
	log        zerolog.Logger
}

type Option func(*Guard)

// WithRoutes sets where redirects point to, usually from config.RouteConfig
func WithRoutes(cfg config.RouteConfig) Option {
	return func(g *Guard) {
		if r := cfg.GetLoginRoute(); r != "" {
			g.loginRoute = r
		}
		if r := cfg.GetHomeRoute(); r != "" {
			g.homeRoute = r
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(g *Guard) {
		g.log = l
	}
}

func New(policy Authorizer, opts ...Option) *Guard {
	g := &Guard{
		policy:     policy,
		loginRoute: DefaultLoginRoute,
		homeRoute:  DefaultHomeRoute,
		log:        log.Logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate applies the guard rules in order to a non-public route: an authenticated user is sent
// away from the login page, an anonymous user is sent to it, and otherwise the
// route's required roles, if it declares any, must all be held. A failed role
// check denies the route without redirecting.
func (g *Guard) Evaluate(ctx context.Context, route Route) Decision {
	if route.Public {
		return Decision{State: Allowed}
	}
	authenticated := g.policy.IsAuthenticated(ctx)

	if route.ToLoginPage && authenticated {
		return Decision{State: RedirectToHome, Redirect: g.homeRoute}
	}
	if !route.ToLoginPage && !authenticated {
		return Decision{State: RedirectToLogin, Redirect: g.loginRoute}
	}

	if route.RequiredRoles != nil && !g.policy.HasRoles(ctx, route.RequiredRoles...) {
		g.log.Error().Str("route", route.Path).Msg("Not allowed")
		return Decision{State: Denied}
	}
	return Decision{State: Allowed}
}

// CanActivate evaluates the route and hands any redirect to nav. The returned
// value does not wait for the navigation.
func (g *Guard) CanActivate(ctx context.Context, route Route, nav Navigator) bool {
	d := g.Evaluate(ctx, route)
	if d.Redirect != "" && nav != nil {
		nav.Navigate(d.Redirect)
	}
	return d.Allowed()
}
