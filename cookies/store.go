// Package cookies defines the cookie-like key/value store a session is
// persisted in, with backends in its subpackages.
package cookies

import (
	"context"
	"net/http"
	"time"
)

// Store holds named cookies together with their attributes. Implementations
// evict expired cookies themselves; callers never compare Expires.
type Store interface {
	// Set stores the cookie, replacing any cookie of the same name. A store
	// may drop the write without error, the way a browser ignores a Secure
	// cookie on an insecure page; callers confirm with Get.
	Set(ctx context.Context, cookie *http.Cookie) error

	// Get returns the cookie value and whether it is present.
	Get(ctx context.Context, name string) (string, bool, error)

	// Delete removes the cookie. Deleting an absent cookie is not an error.
	Delete(ctx context.Context, name string) error
}

// Expired reports whether the cookie's Expires attribute lies before now.
// A zero Expires means a session cookie, which never expires on its own.
func Expired(expires, now time.Time) bool {
	return !expires.IsZero() && !now.Before(expires)
}
