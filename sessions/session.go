package sessions

import (
	"time"

	"github.com/jrsteele09/tally-client/token"
)

// Facts is a read-only projection of the stored session, computed on demand.
type Facts struct {
	Email       string        // Subject of the token
	IssuedAt    time.Time     // iat
	ExpiresAt   time.Time     // exp
	ExpiresLeft time.Duration // ExpiresAt minus the clock at the time of the read, negative once expired
	Authorities []token.Role  // In token order
}

func (f Facts) IssuedAtMillis() int64    { return f.IssuedAt.UnixMilli() }
func (f Facts) ExpiresAtMillis() int64   { return f.ExpiresAt.UnixMilli() }
func (f Facts) ExpiresLeftMillis() int64 { return f.ExpiresLeft.Milliseconds() }

func factsFrom(p *token.Payload, now time.Time) Facts {
	expiresAt := p.ExpiresAtTime()
	return Facts{
		Email:       p.Subject,
		IssuedAt:    p.IssuedAtTime(),
		ExpiresAt:   expiresAt,
		ExpiresLeft: expiresAt.Sub(now),
		Authorities: append([]token.Role(nil), p.Authorities...),
	}
}
