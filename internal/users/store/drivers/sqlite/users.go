package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tabwire/userd/internal/users/domain"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, full_name, username, email, password_hash, role, active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.FullName,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) Create(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (id, full_name, username, email, password_hash, role, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.FullName, u.Username, u.Email, u.PasswordHash, u.Role, u.Active, now, now,
	)
	return mapConstraint(err)
}

func (r *usersRepo) Update(ctx context.Context, u domain.User) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET full_name = ?, role = ?, active = ?, updated_at = ? WHERE id = ?`,
		u.FullName, u.Role, u.Active, time.Now().UTC(), u.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res)
}

func (r *usersRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res)
}

func (r *usersRepo) List(ctx context.Context, page, size int) (domain.Page, error) {
	total, err := r.count(ctx, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return domain.Page{}, err
	}

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT ? OFFSET ?`,
		size, page*size,
	)
	if err != nil {
		return domain.Page{}, err
	}
	return collectPage(rows, page, size, total)
}

func (r *usersRepo) SearchByFullName(
	ctx context.Context,
	fragment string,
	page, size int,
) (domain.Page, error) {
	// LIKE is case-insensitive for ASCII in sqlite; LOWER() both sides to
	// be explicit about the contract.
	pattern := "%" + fragment + "%"

	total, err := r.count(ctx,
		`SELECT COUNT(*) FROM users WHERE LOWER(full_name) LIKE LOWER(?)`, pattern)
	if err != nil {
		return domain.Page{}, err
	}

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE LOWER(full_name) LIKE LOWER(?)
		 ORDER BY id LIMIT ? OFFSET ?`,
		pattern, size, page*size,
	)
	if err != nil {
		return domain.Page{}, err
	}
	return collectPage(rows, page, size, total)
}

func (r *usersRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM users WHERE username = ?`, username)
}

func (r *usersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM users WHERE email = ?`, email)
}

func (r *usersRepo) count(ctx context.Context, query string, args ...any) (int64, error) {
	var total int64
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *usersRepo) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := r.q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func collectPage(rows *sql.Rows, page, size int, total int64) (domain.Page, error) {
	defer rows.Close()

	users := make([]domain.User, 0, size)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return domain.Page{}, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return domain.Page{}, err
	}

	return domain.Page{Users: users, Page: page, Size: size, TotalItems: total}, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}
