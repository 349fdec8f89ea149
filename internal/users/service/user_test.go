package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tabwire/userd/internal/users/domain"
	"github.com/tabwire/userd/pkg/cryptox"
	"github.com/tabwire/userd/pkg/idx"
)

type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.sent = append(m.sent, to)
	return m.err
}

func validInput() CreateUserInput {
	return CreateUserInput{
		FullName: "Bob Stone",
		Username: "bob.stone",
		Email:    "bob@example.com",
		Password: "passw0rd!",
		Role:     "user",
	}
}

func TestCreateUser(t *testing.T) {
	_, users := newServices(t)
	mailer := &recordingMailer{}
	users.Mailer = mailer

	created, err := users.Create(context.Background(), validInput())
	require.NoError(t, err)

	require.NotEmpty(t, created.ID)
	_, err = idx.Parse(created.ID)
	require.NoError(t, err)

	require.Equal(t, "Bob Stone", created.FullName)
	require.Equal(t, domain.RoleUser, created.Role, "role is normalised to upper case")
	require.True(t, created.Active)
	require.False(t, created.CreatedAt.IsZero())

	// The stored hash must verify against the plaintext without ever
	// being the plaintext.
	require.NotEqual(t, "passw0rd!", created.PasswordHash)
	require.NoError(t, cryptox.VerifyPassword("passw0rd!", created.PasswordHash))

	require.Equal(t, []string{"bob@example.com"}, mailer.sent)
}

func TestCreateUserMailFailureIsNotFatal(t *testing.T) {
	_, users := newServices(t)
	users.Mailer = &recordingMailer{err: errors.New("smtp down")}

	_, err := users.Create(context.Background(), validInput())
	require.NoError(t, err)
}

func TestCreateUserValidation(t *testing.T) {
	_, users := newServices(t)

	cases := []struct {
		name    string
		mutate  func(*CreateUserInput)
		wantErr error
	}{
		{"short full name", func(in *CreateUserInput) { in.FullName = "ab" }, ErrValidation},
		{"bad username chars", func(in *CreateUserInput) { in.Username = "bob stone" }, ErrValidation},
		{"short username", func(in *CreateUserInput) { in.Username = "bo" }, ErrValidation},
		{"bad email", func(in *CreateUserInput) { in.Email = "not-an-email" }, ErrValidation},
		{"short password", func(in *CreateUserInput) { in.Password = "a1" }, ErrValidation},
		{"password without digits", func(in *CreateUserInput) { in.Password = "onlyletters" }, ErrValidation},
		{"password without letters", func(in *CreateUserInput) { in.Password = "12345678" }, ErrValidation},
		{"unknown role", func(in *CreateUserInput) { in.Role = "SUPERUSER" }, ErrInvalidRole},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			_, err := users.Create(context.Background(), in)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreateUserDuplicates(t *testing.T) {
	_, users := newServices(t)

	_, err := users.Create(context.Background(), validInput())
	require.NoError(t, err)

	dupEmail := validInput()
	dupEmail.Username = "someone.else"
	_, err = users.Create(context.Background(), dupEmail)
	require.ErrorIs(t, err, ErrDuplicateEmail)

	dupUsername := validInput()
	dupUsername.Email = "other@example.com"
	_, err = users.Create(context.Background(), dupUsername)
	require.ErrorIs(t, err, ErrDuplicateUsername)

	// The rejected registrations rolled back cleanly: only the first
	// user exists.
	page, err := users.List(context.Background(), 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, page.TotalItems)
}

func TestGetByID(t *testing.T) {
	_, users := newServices(t)
	created, err := users.Create(context.Background(), validInput())
	require.NoError(t, err)

	got, err := users.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Username, got.Username)

	_, err = users.GetByID(context.Background(), idx.New().String())
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = users.GetByID(context.Background(), "not-a-ulid")
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateUser(t *testing.T) {
	_, users := newServices(t)
	created, err := users.Create(context.Background(), validInput())
	require.NoError(t, err)

	updated, err := users.Update(context.Background(), created.ID, UpdateUserInput{
		FullName: "Robert Stone",
		Role:     "moderator",
		Active:   false,
	})
	require.NoError(t, err)
	require.Equal(t, "Robert Stone", updated.FullName)
	require.Equal(t, domain.RoleModerator, updated.Role)
	require.False(t, updated.Active)
	require.Equal(t, created.Username, updated.Username, "username is immutable")

	_, err = users.Update(context.Background(), idx.New().String(), UpdateUserInput{
		FullName: "Ghost",
		Role:     "USER",
		Active:   true,
	})
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = users.Update(context.Background(), created.ID, UpdateUserInput{
		FullName: "Robert Stone",
		Role:     "ROOT",
		Active:   true,
	})
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestDeleteUser(t *testing.T) {
	_, users := newServices(t)
	created, err := users.Create(context.Background(), validInput())
	require.NoError(t, err)

	require.NoError(t, users.Delete(context.Background(), created.ID))

	_, err = users.GetByID(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	require.ErrorIs(t, users.Delete(context.Background(), created.ID), ErrUserNotFound)
	require.ErrorIs(t, users.Delete(context.Background(), "junk"), ErrValidation)
}

func TestListPagination(t *testing.T) {
	_, users := newServices(t)
	for i := 0; i < 5; i++ {
		in := validInput()
		in.Username = fmt.Sprintf("user%d", i)
		in.Email = fmt.Sprintf("user%d@example.com", i)
		_, err := users.Create(context.Background(), in)
		require.NoError(t, err)
	}

	page, err := users.List(context.Background(), 0, 2)
	require.NoError(t, err)
	require.Len(t, page.Users, 2)
	require.EqualValues(t, 5, page.TotalItems)
	require.Equal(t, 3, page.TotalPages())

	_, err = users.List(context.Background(), -1, 2)
	require.ErrorIs(t, err, ErrValidation)
	_, err = users.List(context.Background(), 0, 0)
	require.ErrorIs(t, err, ErrValidation)
	_, err = users.List(context.Background(), 0, MaxPageSize+1)
	require.ErrorIs(t, err, ErrValidation)
}

func TestSearchByFullName(t *testing.T) {
	_, users := newServices(t)

	names := []string{"John Doe", "Johnny Cash", "Jane Doe"}
	for i, name := range names {
		in := validInput()
		in.FullName = name
		in.Username = fmt.Sprintf("search%d", i)
		in.Email = fmt.Sprintf("search%d@example.com", i)
		_, err := users.Create(context.Background(), in)
		require.NoError(t, err)
	}

	page, err := users.SearchByFullName(context.Background(), "john", 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, page.TotalItems)

	_, err = users.SearchByFullName(context.Background(), "  ", 0, 10)
	require.ErrorIs(t, err, ErrValidation)
}
