package domain

import "time"

// Roles a user may hold. Stored as plain strings; the whitelist is enforced
// by the user service on create and update.
const (
	RoleUser      = "USER"
	RoleAdmin     = "ADMIN"
	RoleModerator = "MODERATOR"
)

// ValidRole reports whether role is one of the known role names.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

type User struct {
	ID           string
	FullName     string
	Username     string
	Email        string
	PasswordHash string // argon2 encoded, never leaves the service layer
	Role         string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Page is one page of users plus the totals pagination envelopes need.
type Page struct {
	Users      []User
	Page       int
	Size       int
	TotalItems int64
}

// TotalPages derives the page count from the totals.
func (p Page) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	pages := p.TotalItems / int64(p.Size)
	if p.TotalItems%int64(p.Size) != 0 {
		pages++
	}
	return int(pages)
}
