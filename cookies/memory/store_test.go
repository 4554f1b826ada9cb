package memory_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/tally-client/cookies/memory"
	"github.com/stretchr/testify/require"
)

func TestStore_SetGetReplace(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	require.NoError(t, s.Set(ctx, &http.Cookie{Name: "TALLY_JWT", Value: "first"}))
	require.NoError(t, s.Set(ctx, &http.Cookie{Name: "TALLY_JWT", Value: "second"}))

	v, ok, err := s.Get(ctx, "TALLY_JWT")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", v)
	require.Equal(t, 1, s.Len())
}

func TestStore_LazyEviction(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0)
	s := memory.New(memory.WithClock(func() time.Time { return now }))

	require.NoError(t, s.Set(ctx, &http.Cookie{Name: "TALLY_JWT", Value: "v", Expires: now.Add(time.Second)}))
	now = now.Add(2 * time.Second)

	// Still held until somebody reads it
	require.Equal(t, 1, s.Len())

	_, ok, err := s.Get(ctx, "TALLY_JWT")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 0, s.Len())
}

func TestStore_SecureContext(t *testing.T) {
	ctx := context.Background()

	insecure := memory.New()
	require.NoError(t, insecure.Set(ctx, &http.Cookie{Name: "TALLY_JWT", Value: "v", Secure: true}))
	_, ok, _ := insecure.Get(ctx, "TALLY_JWT")
	require.False(t, ok)

	secure := memory.New(memory.WithSecureContext(true))
	require.NoError(t, secure.Set(ctx, &http.Cookie{Name: "TALLY_JWT", Value: "v", Secure: true}))
	_, ok, _ = secure.Get(ctx, "TALLY_JWT")
	require.True(t, ok)
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	require.NoError(t, s.Delete(ctx, "TALLY_JWT"))
	require.NoError(t, s.Set(ctx, &http.Cookie{Name: "TALLY_JWT", Value: "v"}))
	require.NoError(t, s.Delete(ctx, "TALLY_JWT"))
	require.NoError(t, s.Delete(ctx, "TALLY_JWT"))
	require.Equal(t, 0, s.Len())
}
