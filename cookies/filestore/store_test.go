package filestore_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/tally-client/cookies/filestore"
	"github.com/stretchr/testify/require"
)

func TestStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cookies.yaml")

	first := filestore.New(path, filestore.WithSecureContext(true))
	require.NoError(t, first.Set(ctx, &http.Cookie{
		Name:     "TALLY_JWT",
		Value:    "a.b.c",
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(time.Hour),
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "same_site: Strict")

	second := filestore.New(path)
	v, ok, err := second.Get(ctx, "TALLY_JWT")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a.b.c", v)
}

func TestStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0)
	s := filestore.New(filepath.Join(t.TempDir(), "cookies.yaml"), filestore.WithClock(func() time.Time { return now }))

	require.NoError(t, s.Set(ctx, &http.Cookie{Name: "TALLY_JWT", Value: "v", Expires: now.Add(time.Minute)}))
	_, ok, err := s.Get(ctx, "TALLY_JWT")
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, err = s.Get(ctx, "TALLY_JWT")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := filestore.New(filepath.Join(t.TempDir(), "cookies.yaml"))

	require.NoError(t, s.Delete(ctx, "TALLY_JWT"))
	require.NoError(t, s.Set(ctx, &http.Cookie{Name: "TALLY_JWT", Value: "v"}))
	require.NoError(t, s.Delete(ctx, "TALLY_JWT"))
	require.NoError(t, s.Delete(ctx, "TALLY_JWT"))

	_, ok, err := s.Get(ctx, "TALLY_JWT")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_SecureCookieNeedsSecureContext(t *testing.T) {
	ctx := context.Background()
	s := filestore.New(filepath.Join(t.TempDir(), "cookies.yaml"))

	require.NoError(t, s.Set(ctx, &http.Cookie{Name: "TALLY_JWT", Value: "v", Secure: true}))
	_, ok, err := s.Get(ctx, "TALLY_JWT")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cookies: [unterminated"), 0o600))

	_, _, err := filestore.New(path).Get(context.Background(), "TALLY_JWT")
	require.Error(t, err)
}
