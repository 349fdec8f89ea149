package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tabwire/userd/pkg/jwtx"
	"github.com/tabwire/userd/pkg/slogx"
)

// bearerPrefix is the literal Authorization scheme prefix, trailing space
// included.
const bearerPrefix = "Bearer "

// ErrUnknownPrincipal is returned by a PrincipalResolver when a token's
// subject does not name a known user. The gate rejects such requests: a
// token for a deleted account must not pass, with or without a principal.
var ErrUnknownPrincipal = errors.New("httpx: unknown principal")

// TokenVerifier validates a compact token string at a reference time.
// *jwtx.Codec satisfies this.
type TokenVerifier interface {
	Verify(token string, now time.Time) (jwtx.Claims, error)
}

// PrincipalResolver turns a verified token subject into a request principal.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, subject string) (Principal, error)
}

// AuthGate is the authentication gate applied to every inbound request.
//
// Each request moves through a small state machine: it is first classified
// as public or protected by prefix-matching the path against PublicPrefixes;
// public requests are forwarded untouched. Protected requests must present a
// verifiable bearer token, whose subject must resolve to a known user; only
// then is a Principal attached to the request context and the request
// forwarded. Every failure is terminal for that request alone and is written
// synchronously as a 401.
//
// The gate holds no cross-request mutable state, so a single instance serves
// arbitrarily many concurrent requests without locking.
type AuthGate struct {
	Verifier TokenVerifier
	Resolver PrincipalResolver

	// PublicPrefixes is the deployment-time allow-list of path prefixes
	// reachable without a token. Matching is case-sensitive; the list is
	// small and non-overlapping by convention.
	PublicPrefixes []string

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Middleware returns the gate as a Middleware for use with Chain.
func (g *AuthGate) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.serve(next, w, r)
		})
	}
}

func (g *AuthGate) serve(next http.Handler, w http.ResponseWriter, r *http.Request) {
	if g.isPublic(r.URL.Path) {
		// Public routes are forwarded without token inspection and
		// without a principal in context.
		next.ServeHTTP(w, r)
		return
	}

	ctx := r.Context()
	log := slogx.FromContext(ctx)

	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, bearerPrefix) {
		writeBearerError(w, "missing bearer token")
		return
	}

	now := time.Now()
	if g.Now != nil {
		now = g.Now()
	}

	claims, err := g.Verifier.Verify(strings.TrimPrefix(authz, bearerPrefix), now)
	if err != nil {
		// Expired gets its own message so clients know to re-login;
		// everything else stays deliberately vague.
		if errors.Is(err, jwtx.ErrExpired) {
			writeBearerError(w, "token expired")
			return
		}
		writeBearerError(w, "invalid token")
		return
	}

	principal, err := g.Resolver.ResolvePrincipal(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUnknownPrincipal) {
			log.Warn("token subject no longer resolves", "subject", claims.Subject)
			writeBearerError(w, "invalid token")
			return
		}
		log.Error("principal resolution failed", "err", err)
		WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "server_error",
		})
		return
	}

	next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(ctx, principal)))
}

func (g *AuthGate) isPublic(path string) bool {
	for _, prefix := range g.PublicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// RFC 6750-compliant error response for bearer auth. The description also
// goes in the body so non-browser clients see which failure they hit.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "invalid_token",
		"error_description": desc,
	})
}
