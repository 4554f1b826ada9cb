package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/tally-client/internal/config"
	"github.com/jrsteele09/tally-client/tallyapi"
	"github.com/jrsteele09/tally-client/token"
	"github.com/jrsteele09/tally-client/token/tokentest"
	"github.com/stretchr/testify/require"
)

func fakeBackend(t *testing.T, roles ...token.Role) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		user, password, ok := r.BasicAuth()
		if !ok || password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		claims := tokentest.Default(time.Now())
		claims.Subject = user
		claims.Authorities = roles
		_ = json.NewEncoder(w).Encode(map[string]any{"jwt": tokentest.Issue(t, claims), "secure": false})
	})
	mux.HandleFunc("GET /account-balance", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"amountPayments":10,"amountPurchases":2.5,"amountTotal":7.5}`))
	})
	mux.HandleFunc("GET /payments", func(w http.ResponseWriter, _ *http.Request) {
		// the backend no longer accepts the token
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"Coffee","price":1.2}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// setEnv points the CLI at baseURL with a fresh cookie file and returns its path
func setEnv(t *testing.T, baseURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cookies.yaml")
	t.Setenv("TALLY_BASE_URL", baseURL)
	t.Setenv("TALLY_STORE", config.StoreFile)
	t.Setenv("TALLY_STORE_FILE", path)
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	ctx := context.Background()
	cmd, finish := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := finish(ctx, cmd.ExecuteContext(ctx))
	return out.String(), err
}

func TestCLI_SessionLifecycle(t *testing.T) {
	srv := fakeBackend(t, token.RoleUser)
	setEnv(t, srv.URL)

	_, err := execute(t, "balance")
	require.ErrorIs(t, err, errNotLoggedIn)

	out, err := execute(t, "login", "-e", "user@example.com", "-p", "pw")
	require.NoError(t, err)
	require.Contains(t, out, "user@example.com")

	out, err = execute(t, "login", "-e", "user@example.com", "-p", "pw")
	require.NoError(t, err)
	require.Contains(t, out, "Already logged in as user@example.com")

	out, err = execute(t, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "user")

	out, err = execute(t, "balance")
	require.NoError(t, err)
	require.Contains(t, out, "7.50")

	_, err = execute(t, "logout")
	require.NoError(t, err)

	_, err = execute(t, "whoami")
	require.ErrorIs(t, err, errNotLoggedIn)
}

func TestCLI_AdminRoutes(t *testing.T) {
	srv := fakeBackend(t, token.RoleUser)
	setEnv(t, srv.URL)

	_, err := execute(t, "login", "-e", "user@example.com", "-p", "pw")
	require.NoError(t, err)

	_, err = execute(t, "products")
	require.ErrorIs(t, err, errNotAllowed)
}

func TestCLI_AdminCanListProducts(t *testing.T) {
	srv := fakeBackend(t, token.RoleUser, token.RoleAdmin)
	setEnv(t, srv.URL)

	_, err := execute(t, "login", "-e", "admin@example.com", "-p", "pw")
	require.NoError(t, err)

	out, err := execute(t, "products")
	require.NoError(t, err)
	require.Contains(t, out, "Coffee")
	require.Contains(t, out, "1.20")
}

func TestCLI_FailedLogin(t *testing.T) {
	srv := fakeBackend(t, token.RoleUser)
	setEnv(t, srv.URL)

	_, err := execute(t, "login", "-e", "user@example.com", "-p", "wrong")
	require.Error(t, err)

	_, err = execute(t, "whoami")
	require.ErrorIs(t, err, errNotLoggedIn)
}

func TestCLI_UnknownStore(t *testing.T) {
	t.Setenv("TALLY_STORE", "floppy")

	_, err := execute(t, "whoami")
	require.ErrorContains(t, err, `unknown cookie store "floppy"`)
}

func TestStorePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "c.yaml")
	got, err := storePath(abs)
	require.NoError(t, err)
	require.Equal(t, abs, got)

	t.Setenv("HOME", "/home/tally")
	got, err = storePath(".tally/cookies.yaml")
	require.NoError(t, err)
	require.Equal(t, "/home/tally/.tally/cookies.yaml", got)
}

func TestCLI_UnreadableSessionForcesLogin(t *testing.T) {
	srv := fakeBackend(t, token.RoleUser)
	path := setEnv(t, srv.URL)
	seed := []byte("cookies:\n  TALLY_JWT:\n    value: garbage\n    secure: false\n")

	tests := []struct {
		name string
		run  func(t *testing.T)
	}{
		{"guarded command asks for login", func(t *testing.T) {
			_, err := execute(t, "whoami")
			require.ErrorIs(t, err, errNotLoggedIn)
		}},
		{"login replaces the token", func(t *testing.T) {
			out, err := execute(t, "login", "-e", "user@example.com", "-p", "pw")
			require.NoError(t, err)
			require.NotContains(t, out, "Already logged in")

			out, err = execute(t, "whoami")
			require.NoError(t, err)
			require.Contains(t, out, "user@example.com")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(path, seed, 0o600))
			tt.run(t)
		})
	}
}

func TestCLI_RejectedSessionIsRemoved(t *testing.T) {
	srv := fakeBackend(t, token.RoleUser)
	setEnv(t, srv.URL)

	_, err := execute(t, "login", "-e", "user@example.com", "-p", "pw")
	require.NoError(t, err)

	_, err = execute(t, "payments")
	require.Error(t, err)
	require.True(t, tallyapi.HasStatus(err, http.StatusUnauthorized))
	require.ErrorContains(t, err, "session removed")

	_, err = execute(t, "whoami")
	require.ErrorIs(t, err, errNotLoggedIn)
}

func TestCLI_ReleasesStoreWhenCommandFails(t *testing.T) {
	mr := miniredis.RunT(t)
	srv := fakeBackend(t, token.RoleUser)
	t.Setenv("TALLY_BASE_URL", srv.URL)
	t.Setenv("TALLY_STORE", config.StoreRedis)
	t.Setenv("REDIS_ADDR", mr.Addr())

	_, err := execute(t, "balance")
	require.ErrorIs(t, err, errNotLoggedIn)

	require.Eventually(t, func() bool { return mr.CurrentConnectionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
