package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tabwire/userd/internal/users/domain"
	"github.com/tabwire/userd/internal/users/store/drivers/sqlite"
	"github.com/tabwire/userd/pkg/cryptox"
	"github.com/tabwire/userd/pkg/idx"
	"github.com/tabwire/userd/pkg/jwtx"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "userd-service-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	code := m.Run()
	os.Remove(pepperPath)
	os.Exit(code)
}

func newServices(t *testing.T) (*AuthService, *UserService) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewEphemeralCodec(jwtx.DefaultTokenTTL)
	require.NoError(t, err)

	return &AuthService{Store: st, Codec: codec}, &UserService{Store: st}
}

func registerAlice(t *testing.T, users *UserService) domain.User {
	t.Helper()

	u, err := users.Create(context.Background(), CreateUserInput{
		FullName: "Alice Johnson",
		Username: "alice",
		Email:    "alice@example.com",
		Password: "sup3rsecret",
		Role:     "USER",
	})
	require.NoError(t, err)
	return u
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	auth, users := newServices(t)
	registerAlice(t, users)

	resp, err := auth.Login(context.Background(), "alice", "sup3rsecret")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	claims, err := auth.Codec.Verify(resp.Token, time.Now())
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
}

func TestLoginFailureIsUniform(t *testing.T) {
	auth, users := newServices(t)
	registerAlice(t, users)

	_, errWrongPw := auth.Login(context.Background(), "alice", "wrong-password1")
	require.ErrorIs(t, errWrongPw, ErrInvalidCredentials)

	_, errUnknown := auth.Login(context.Background(), "nobody", "sup3rsecret")
	require.ErrorIs(t, errUnknown, ErrInvalidCredentials)

	// Identical error for both cases, so login cannot be used as a
	// username oracle.
	require.Equal(t, errWrongPw, errUnknown)
}

func TestAuthenticateReturnsTheStoredUser(t *testing.T) {
	auth, users := newServices(t)
	created := registerAlice(t, users)

	got, err := auth.Authenticate(context.Background(), "alice", "sup3rsecret")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, domain.RoleUser, got.Role)
}

func TestAuthenticateRejectsUnusableHash(t *testing.T) {
	auth, _ := newServices(t)

	// Seed a record with a hash that cannot be parsed. Authentication
	// must fail closed, not panic or succeed.
	err := auth.Store.Users().Create(context.Background(), domain.User{
		ID:           idx.New().String(),
		FullName:     "Broken Hash",
		Username:     "broken",
		Email:        "broken@example.com",
		PasswordHash: "not-a-phc-string",
		Role:         domain.RoleUser,
		Active:       true,
	})
	require.NoError(t, err)

	_, err = auth.Authenticate(context.Background(), "broken", "whatever1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
