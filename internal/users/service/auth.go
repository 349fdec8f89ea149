package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tabwire/userd/internal/users/domain"
	"github.com/tabwire/userd/internal/users/store"
	"github.com/tabwire/userd/pkg/cryptox"
	"github.com/tabwire/userd/pkg/jwtx"
	"github.com/tabwire/userd/pkg/slogx"
)

// ErrInvalidCredentials covers both "unknown username" and "wrong password".
// Callers must not be able to tell the two apart, or logins become a
// username oracle.
var ErrInvalidCredentials = errors.New("invalid_credentials")

// TokenResponse is the login success envelope.
type TokenResponse struct {
	Token string `json:"token"`
}

// AuthService verifies credentials and mints access tokens. It is the only
// component allowed to call Codec.Issue.
type AuthService struct {
	Store store.Store
	Codec *jwtx.Codec
}

// Authenticate checks a username/password pair against the stored hash.
// The password comparison is constant-time inside cryptox.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.Store.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.User{}, ErrInvalidCredentials
		}
		// A hash that fails to parse is a data problem, not a caller
		// problem, but it still must not authenticate.
		slogx.FromContext(ctx).Error("stored password hash unusable",
			slog.String("username", username), slog.Any("err", err))
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// Login runs the full credential flow: verify, then mint. Token subjects are
// usernames, which the auth gate later resolves back to a user record.
func (s *AuthService) Login(ctx context.Context, username, password string) (TokenResponse, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return TokenResponse{}, err
	}

	token, err := s.Codec.Issue(user.Username, time.Now().UTC())
	if err != nil {
		return TokenResponse{}, err
	}

	slogx.FromContext(ctx).Info("login succeeded", slog.String("username", user.Username))
	return TokenResponse{Token: token}, nil
}
