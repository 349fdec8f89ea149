package jwtx

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningKeySize is the size of the HMAC-SHA256 signing key in bytes.
const SigningKeySize = 32

var (
	// ErrExpired reports a well-signed token past its expiry.
	ErrExpired = errors.New("jwtx: token expired")

	// ErrSignatureInvalid covers everything else: bad signature, wrong key,
	// malformed token, unexpected algorithm. Callers get no detail beyond
	// this on purpose.
	ErrSignatureInvalid = errors.New("jwtx: invalid token")
)

// Codec signs and verifies HS256 access tokens with a single symmetric key.
//
// The key is write-once at construction and read-only afterwards, so a Codec
// is safe for unsynchronized use from any number of concurrent requests.
// There is no key rotation and no persistence: a restart mints a new key and
// every previously issued token stops verifying.
type Codec struct {
	key []byte
	ttl time.Duration
}

// NewCodec creates a codec around an existing signing key.
func NewCodec(key []byte, ttl time.Duration) (*Codec, error) {
	if len(key) != SigningKeySize {
		return nil, fmt.Errorf("jwtx: signing key must be %d bytes, got %d", SigningKeySize, len(key))
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Codec{key: key, ttl: ttl}, nil
}

// NewEphemeralCodec generates a fresh random signing key for the process
// lifetime. Tokens from a previous process generation will not verify.
func NewEphemeralCodec(ttl time.Duration) (*Codec, error) {
	key := make([]byte, SigningKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("jwtx: generate signing key: %w", err)
	}
	return NewCodec(key, ttl)
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue mints a compact signed token for subject with iat=now and
// exp=now+TTL.
func (c *Codec) Issue(subject string, now time.Time) (string, error) {
	claims := NewClaims(subject, c.ttl, now)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a compact token against the process key.
//
// The signature is checked first; any parse or signature failure collapses
// to ErrSignatureInvalid. Only a token that is provably ours can fail with
// ErrExpired, so callers may safely surface the expiry case to users with a
// distinct message.
func (c *Codec) Verify(tokenStr string, now time.Time) (Claims, error) {
	// Claim validation is done by hand below so expiry is checked against
	// the caller's reference time rather than the wall clock.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		return Claims{}, ErrSignatureInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrSignatureInvalid
	}

	if err := claims.ValidateExpiryAt(now); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}
