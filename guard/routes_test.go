package guard_test

import (
	"testing"

	"github.com/jrsteele09/tally-client/guard"
	"github.com/jrsteele09/tally-client/token"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		path      string
		wantPath  string
		wantLogin bool
		wantRoles []token.Role
	}{
		{"/login", guard.RouteLogin, true, nil},
		{"payments", guard.RoutePayments, false, []token.Role{token.RoleUser}},
		{"/products/edit/12", "products/edit/:product", false, []token.Role{token.RoleAdmin}},
		{"/purchases/delete/3/", "purchases/delete/:purchase", false, []token.Role{token.RoleUser}},
		{"/qr/99", "qr/:productId", false, []token.Role{token.RoleUser}},
		{"/users", guard.RouteUsers, false, []token.Role{token.RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r, ok := guard.Lookup(tt.path)
			require.True(t, ok)
			require.Equal(t, tt.wantPath, r.Path)
			require.Equal(t, tt.wantLogin, r.ToLoginPage)
			require.Equal(t, tt.wantRoles, r.RequiredRoles)
		})
	}
}

func TestLookup_NoMatch(t *testing.T) {
	for _, p := range []string{"", "/", "/products/edit", "/products/edit/1/2", "/nope"} {
		_, ok := guard.Lookup(p)
		require.False(t, ok, p)
	}
}

func TestResolve_FallsBackToSettings(t *testing.T) {
	require.Equal(t, guard.RouteSettings, guard.Resolve("").Path)
	require.Equal(t, guard.RouteSettings, guard.Resolve("/does/not/exist").Path)
	require.Equal(t, guard.RouteProductsNew, guard.Resolve("/products/new").Path)
}

func TestRoutes_ReturnsCopy(t *testing.T) {
	rs := guard.Routes()
	rs[0].Path = "changed"
	require.Equal(t, guard.RouteLogin, guard.Routes()[0].Path)
}
