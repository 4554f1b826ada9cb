package guard

import (
	"net/http"

	"github.com/jrsteele09/tally-client/auth"
	"github.com/jrsteele09/tally-client/cookies/httpcookies"
	"github.com/jrsteele09/tally-client/sessions"
)

// PolicyFactory builds the authorizer for one HTTP exchange
type PolicyFactory func(w http.ResponseWriter, r *http.Request) Authorizer

// CookiePolicy reads the session from the request's cookies
func CookiePolicy(opts ...sessions.Option) PolicyFactory {
	return func(w http.ResponseWriter, r *http.Request) Authorizer {
		return auth.NewPolicy(sessions.New(httpcookies.New(w, r), opts...))
	}
}

// HTTPGuard applies the guard to server-rendered routes
type HTTPGuard struct {
	policies PolicyFactory
	opts     []Option
}

func NewHTTP(policies PolicyFactory, opts ...Option) *HTTPGuard {
	return &HTTPGuard{policies: policies, opts: opts}
}

// Require is middleware that guards the wrapped handler with route's rules.
// Redirects answer 303 See Other; a failed role check answers 403.
func (h *HTTPGuard) Require(route Route) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			g := New(h.policies(w, r), h.opts...)
			d := g.Evaluate(r.Context(), route)

			switch d.State {
			case RedirectToLogin, RedirectToHome:
				http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
			case Denied:
				http.Error(w, "Forbidden", http.StatusForbidden)
			default:
				next(w, r)
			}
		}
	}
}

// ChainMiddleware wraps routeFunction so that mw[0] runs first
func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}
