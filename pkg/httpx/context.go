package httpx

import "context"

// Principal is the identity a request is acting as once the auth gate has
// validated its token. It lives only in that request's context: never stored,
// never shared across requests, never mutated after creation.
type Principal struct {
	UserID   string
	Username string
	Role     string

	// Authorities granted at the gate. The gate itself grants none; role
	// based checks happen in handlers against the resolved user record.
	Authorities []string
}

type ctxKey string

const ctxKeyPrincipal ctxKey = "principal"

// ContextWithPrincipal returns a child context carrying p.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// PrincipalFromContext extracts the authenticated principal, if any.
// ok is false for requests that reached the handler via a public route.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(Principal)
	return p, ok
}
