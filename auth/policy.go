package auth

import (
	"context"

	"github.com/jrsteele09/tally-client/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SessionReader is the part of the session store the policy needs
type SessionReader interface {
	IsPresent(ctx context.Context) bool
	Payload(ctx context.Context) (*token.Payload, error)
}

// Policy answers authorization questions from the stored session. It keeps no
// decoded state between calls; every answer reflects the store at call time.
// Decisions are advisory: the backend verifies the token on every request.
type Policy struct {
	sessions SessionReader
	log      zerolog.Logger
}

type Option func(*Policy)

func WithLogger(l zerolog.Logger) Option {
	return func(p *Policy) {
		p.log = l
	}
}

func NewPolicy(sessions SessionReader, opts ...Option) *Policy {
	p := &Policy{
		sessions: sessions,
		log:      log.Logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsAuthenticated reports whether a session token is stored
func (p *Policy) IsAuthenticated(ctx context.Context) bool {
	return p.sessions.IsPresent(ctx)
}

func (p *Policy) IsAdmin(ctx context.Context) bool {
	return p.HasRoles(ctx, token.RoleAdmin)
}

// HasRoles reports whether the session holds every required role. Without a
// session, or with a token that cannot be decoded, the answer is false. An
// empty requirement is satisfied by any session.
func (p *Policy) HasRoles(ctx context.Context, required ...token.Role) bool {
	if !p.sessions.IsPresent(ctx) {
		return false
	}
	payload, err := p.sessions.Payload(ctx)
	if err != nil {
		p.log.Err(err).Msg("Failed to decode session token")
		return false
	}
	return payload.HasAuthorities(required...)
}
