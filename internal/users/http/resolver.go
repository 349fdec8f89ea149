package http

import (
	"context"
	"errors"

	"github.com/tabwire/userd/internal/users/store"
	"github.com/tabwire/userd/pkg/httpx"
)

// storeResolver turns token subjects (usernames) back into request
// principals. Subjects without a matching user record are rejected rather
// than passed through anonymously, so a token minted for a since-deleted
// account stops working immediately.
type storeResolver struct {
	store store.Store
}

func (r *storeResolver) ResolvePrincipal(ctx context.Context, subject string) (httpx.Principal, error) {
	user, err := r.store.Users().GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httpx.Principal{}, httpx.ErrUnknownPrincipal
		}
		return httpx.Principal{}, err
	}
	if !user.Active {
		return httpx.Principal{}, httpx.ErrUnknownPrincipal
	}

	return httpx.Principal{
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role,
		Authorities: []string{},
	}, nil
}
