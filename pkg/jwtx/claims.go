package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the default lifetime for access tokens. The source of
// truth for "how long is a login good for" lives here: 24 hours, after which
// the client must authenticate again.
const DefaultTokenTTL = 24 * time.Hour

// Claims is the decoded payload of an access token. We only carry the
// registered claim set (sub/iat/exp); authorization decisions happen
// downstream against the resolved user record, not against the token.
type Claims struct {
	jwt.RegisteredClaims
}

// NewClaims builds the claim set for a freshly issued token.
func NewClaims(subject string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// ValidateExpiryAt checks the exp claim against the supplied reference time.
// The comparison is strict: a token remains valid through its exact
// expiration instant and fails only once now is past it.
func (c *Claims) ValidateExpiryAt(now time.Time) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}
