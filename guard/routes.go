package guard

import (
	"strings"

	"github.com/jrsteele09/tally-client/token"
)

// Route names of the Tally application
const (
	RouteLogin           = "login"
	RoutePayments        = "payments"
	RoutePaymentsDelete  = "payments/delete"
	RoutePaymentsNew     = "payments/new"
	RouteProducts        = "products"
	RouteProductsEdit    = "products/edit"
	RouteProductsNew     = "products/new"
	RoutePurchases       = "purchases"
	RoutePurchasesDelete = "purchases/delete"
	RoutePurchasesNew    = "purchases/new"
	RouteQR              = "qr"
	RouteRegister        = "register"
	RouteRegisterConfirm = "register/confirm"
	RouteResetPassword   = "reset-password"
	RouteSettings        = "settings"
	RouteUsers           = "users"
)

// Route is the metadata a route declares for the guard. A nil RequiredRoles
// means the route has no role guard; an empty non-nil slice is a role guard
// that any session passes.
type Route struct {
	Path          string
	ToLoginPage   bool
	Public        bool // public routes bypass the guard entirely
	RequiredRoles []token.Role
}

var (
	userOnly  = []token.Role{token.RoleUser}
	adminOnly = []token.Role{token.RoleAdmin}
)

// routes mirrors the front end's route table; ":name" segments match anything
var routes = []Route{
	{Path: RouteLogin, ToLoginPage: true},
	{Path: RoutePayments, RequiredRoles: userOnly},
	{Path: RoutePaymentsDelete + "/:payment", RequiredRoles: userOnly},
	{Path: RoutePaymentsNew, RequiredRoles: userOnly},
	{Path: RouteProducts, RequiredRoles: adminOnly},
	{Path: RouteProductsEdit + "/:product", RequiredRoles: adminOnly},
	{Path: RouteProductsNew, RequiredRoles: adminOnly},
	{Path: RoutePurchases, RequiredRoles: userOnly},
	{Path: RoutePurchasesDelete + "/:purchase", RequiredRoles: userOnly},
	{Path: RoutePurchasesNew, RequiredRoles: userOnly},
	{Path: RouteQR + "/:productId", RequiredRoles: userOnly},
	{Path: RouteRegister, Public: true},
	{Path: RouteRegisterConfirm, Public: true},
	{Path: RouteResetPassword, Public: true},
	{Path: RouteSettings, RequiredRoles: userOnly},
	{Path: RouteUsers, RequiredRoles: adminOnly},
}

// Routes returns a copy of the route table
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Resolve finds the route for a path such as "/products/edit/7". The empty
// path and unknown paths resolve to the settings route, as the front end
// redirects them there.
func Resolve(path string) Route {
	if r, ok := Lookup(path); ok {
		return r
	}
	r, _ := Lookup(RouteSettings)
	return r
}

// Lookup returns the route whose pattern matches path exactly
func Lookup(path string) (Route, bool) {
	segments := split(path)
	for _, r := range routes {
		if match(split(r.Path), segments) {
			return r, true
		}
	}
	return Route{}, false
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func match(pattern, segments []string) bool {
	if len(pattern) != len(segments) {
		return false
	}
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if segments[i] == "" {
				return false
			}
			continue
		}
		if p != segments[i] {
			return false
		}
	}
	return true
}
