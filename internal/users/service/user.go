package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/tabwire/userd/internal/users/domain"
	"github.com/tabwire/userd/internal/users/store"
	"github.com/tabwire/userd/pkg/cryptox"
	"github.com/tabwire/userd/pkg/idx"
	"github.com/tabwire/userd/pkg/mailx"
	"github.com/tabwire/userd/pkg/slogx"
)

const (
	// MaxPageSize bounds list and search requests.
	MaxPageSize = 100

	minPasswordLength = 8
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already registered")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrInvalidRole       = errors.New("invalid role")
	ErrValidation        = errors.New("validation failed")
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,50}$`)
	emailPattern    = regexp.MustCompile(`^[\w-.]+@([\w-]+\.)+[\w-]{2,4}$`)
	hasLetter       = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit        = regexp.MustCompile(`[0-9]`)
)

// CreateUserInput carries the fields accepted on registration.
type CreateUserInput struct {
	FullName string
	Username string
	Email    string
	Password string
	Role     string
}

// UpdateUserInput carries the mutable fields.
type UpdateUserInput struct {
	FullName string
	Role     string
	Active   bool
}

// UserService owns the CRUD business rules around user records.
type UserService struct {
	Store  store.Store
	Mailer mailx.Mailer
}

// Create validates the input, hashes the password and persists a new active
// user, then sends the confirmation email. Mail failure is logged and never
// fails the registration.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (domain.User, error) {
	if err := validateCreateInput(in); err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		FullName:     strings.TrimSpace(in.FullName),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         strings.ToUpper(in.Role),
		Active:       true,
	}

	// Duplicate checks and the insert run in one transaction so a
	// concurrent registration cannot slip in between them. The unique
	// indexes remain the source of truth; the pre-checks only exist for
	// friendlier ordering of errors.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if taken, err := tx.Users().ExistsByEmail(ctx, in.Email); err != nil {
			return err
		} else if taken {
			return ErrDuplicateEmail
		}
		if taken, err := tx.Users().ExistsByUsername(ctx, in.Username); err != nil {
			return err
		} else if taken {
			return ErrDuplicateUsername
		}

		if err := tx.Users().Create(ctx, user); err != nil {
			switch {
			case errors.Is(err, store.ErrUsernameConflict):
				return ErrDuplicateUsername
			case errors.Is(err, store.ErrEmailConflict):
				return ErrDuplicateEmail
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	s.sendConfirmationEmail(ctx, user)

	created, err := s.Store.Users().GetByID(ctx, user.ID)
	if err != nil {
		return domain.User{}, err
	}
	return created, nil
}

// GetByID fetches a single user.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	if _, err := idx.Parse(id); err != nil {
		return domain.User{}, fmt.Errorf("%w: malformed user id", ErrValidation)
	}

	user, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// List returns one page of users.
func (s *UserService) List(ctx context.Context, page, size int) (domain.Page, error) {
	if err := validatePagination(page, size); err != nil {
		return domain.Page{}, err
	}
	return s.Store.Users().List(ctx, page, size)
}

// SearchByFullName returns one page of users matching the name fragment.
func (s *UserService) SearchByFullName(ctx context.Context, fullName string, page, size int) (domain.Page, error) {
	if strings.TrimSpace(fullName) == "" {
		return domain.Page{}, fmt.Errorf("%w: fullName must not be empty", ErrValidation)
	}
	if err := validatePagination(page, size); err != nil {
		return domain.Page{}, err
	}
	return s.Store.Users().SearchByFullName(ctx, fullName, page, size)
}

// Update mutates fullName, role and active for an existing user.
func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (domain.User, error) {
	if _, err := idx.Parse(id); err != nil {
		return domain.User{}, fmt.Errorf("%w: malformed user id", ErrValidation)
	}
	if strings.TrimSpace(in.FullName) == "" {
		return domain.User{}, fmt.Errorf("%w: fullName is required", ErrValidation)
	}
	role := strings.ToUpper(in.Role)
	if !domain.ValidRole(role) {
		return domain.User{}, ErrInvalidRole
	}

	user, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	user.FullName = strings.TrimSpace(in.FullName)
	user.Role = role
	user.Active = in.Active

	if err := s.Store.Users().Update(ctx, user); err != nil {
		return domain.User{}, err
	}

	return s.Store.Users().GetByID(ctx, id)
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := idx.Parse(id); err != nil {
		return fmt.Errorf("%w: malformed user id", ErrValidation)
	}

	err := s.Store.Users().Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func validateCreateInput(in CreateUserInput) error {
	name := strings.TrimSpace(in.FullName)
	if len(name) < 3 || len(name) > 255 {
		return fmt.Errorf("%w: fullName must be 3-255 characters", ErrValidation)
	}
	if !usernamePattern.MatchString(in.Username) {
		return fmt.Errorf("%w: username must be 3-50 characters of a-zA-Z0-9._-", ErrValidation)
	}
	if !emailPattern.MatchString(in.Email) {
		return fmt.Errorf("%w: email must be a valid address", ErrValidation)
	}
	if len(in.Password) < minPasswordLength ||
		!hasLetter.MatchString(in.Password) || !hasDigit.MatchString(in.Password) {
		return fmt.Errorf("%w: password must be at least %d characters with letters and digits",
			ErrValidation, minPasswordLength)
	}
	if !domain.ValidRole(strings.ToUpper(in.Role)) {
		return ErrInvalidRole
	}
	return nil
}

func (s *UserService) sendConfirmationEmail(ctx context.Context, user domain.User) {
	if s.Mailer == nil {
		return
	}

	body := "Hello " + user.FullName + ",\n\nYour account has been created successfully!"
	if err := s.Mailer.Send(user.Email, "Registration successful", body); err != nil {
		slogx.FromContext(ctx).Error("confirmation email failed",
			slog.String("user_id", user.ID), slog.Any("err", err))
	}
}

func validatePagination(page, size int) error {
	if page < 0 {
		return fmt.Errorf("%w: page must not be negative", ErrValidation)
	}
	if size <= 0 || size > MaxPageSize {
		return fmt.Errorf("%w: size must be between 1 and %d", ErrValidation, MaxPageSize)
	}
	return nil
}
