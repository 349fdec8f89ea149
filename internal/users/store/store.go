package store

import (
	"context"
	"errors"

	"github.com/tabwire/userd/internal/users/domain"
)

var (
	ErrNotFound          = errors.New("store: not found")
	ErrUsernameConflict  = errors.New("store: username already exists")
	ErrEmailConflict     = errors.New("store: email already exists")
	ErrIntegrityViolated = errors.New("store: integrity constraint violated")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// postgres later) implement this. Sub-repositories keep concerns tidy and
// testable.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped store.
type Tx interface {
	Users() Users
	Commit() error
	Rollback() error
}

type Users interface {
	// GetByID returns a user by id.
	GetByID(ctx context.Context, id string) (domain.User, error)

	// GetByUsername is used during login and by the auth gate's principal
	// resolution.
	GetByUsername(ctx context.Context, username string) (domain.User, error)

	// Create inserts a new user (id is provided by the service via ULID).
	// Unique violations surface as ErrUsernameConflict / ErrEmailConflict.
	Create(ctx context.Context, u domain.User) error

	// Update mutates full_name, role and active, and bumps updated_at.
	Update(ctx context.Context, u domain.User) error

	// Delete removes a user by id.
	Delete(ctx context.Context, id string) error

	// List returns one page ordered by id, oldest first.
	List(ctx context.Context, page, size int) (domain.Page, error)

	// SearchByFullName returns one page of users whose full name contains
	// the fragment, case-insensitively.
	SearchByFullName(ctx context.Context, fragment string, page, size int) (domain.Page, error)

	// ExistsByUsername and ExistsByEmail back the duplicate checks on create.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
