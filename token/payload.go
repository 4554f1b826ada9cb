package token

import "time"

// Payload is the decoded middle segment of a session token.
type Payload struct {
	Issuer      string `json:"iss"`
	Subject     string `json:"sub"` // email of the signed-in user
	Audience    string `json:"aud"`
	ExpiresAt   int64  `json:"exp"` // epoch seconds
	IssuedAt    int64  `json:"iat"` // epoch seconds
	Authorities []Role `json:"authorities"`
}

// ExpiresAtTime returns exp as wall-clock time
func (p *Payload) ExpiresAtTime() time.Time {
	return time.Unix(p.ExpiresAt, 0)
}

// IssuedAtTime returns iat as wall-clock time
func (p *Payload) IssuedAtTime() time.Time {
	return time.Unix(p.IssuedAt, 0)
}

// HasAuthorities reports whether every required role is among the payload's
// authorities. An empty requirement is always satisfied.
func (p *Payload) HasAuthorities(required ...Role) bool {
	granted := make(map[Role]struct{}, len(p.Authorities))
	for _, r := range p.Authorities {
		granted[r] = struct{}{}
	}
	for _, r := range required {
		if _, ok := granted[r]; !ok {
			return false
		}
	}
	return true
}
