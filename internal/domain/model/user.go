//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
)

const (
	maxEmailLen    = 255
	minPasswordLen = 6
)

// User is an account in the identity backend. PasswordHash is a bcrypt hash
// and never leaves the data layer.
type User struct {
	ID           int             `json:"id"                     db:"id"`
	FirstName    string          `json:"firstName"              db:"first_name"`
	LastName     string          `json:"lastName"               db:"last_name"`
	Email        string          `json:"email"                  db:"email"`
	PasswordHash string          `json:"-"                      db:"password_hash"`
	Role         domainauth.Role `json:"role"                   db:"role"`
	Position     string          `json:"position,omitempty"     db:"position"`
	DepartmentID int             `json:"departmentId,omitempty" db:"department_id"`
	IsActive     bool            `json:"isActive"               db:"is_active"`
	CreatedAt    time.Time       `json:"createdAt"              db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt"              db:"updated_at"`
}

// Identity projects the account onto the identity shape returned to clients.
func (u User) Identity() domainauth.Identity {
	return domainauth.Identity{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Role:         u.Role,
		Position:     u.Position,
		DepartmentID: u.DepartmentID,
		IsActive:     u.IsActive,
	}
}

// CreateUserRequest represents parameters to create a User.
type CreateUserRequest struct {
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	Email        string          `json:"email"`
	Password     string          `json:"password"`
	Role         domainauth.Role `json:"role"`
	Position     string          `json:"position"`
	DepartmentID int             `json:"departmentId"`
}

// Validate checks required fields and basic constraints.
func (r *CreateUserRequest) Validate() error {
	email := NormalizeEmail(r.Email)
	if email == "" {
		return errors.New("email is required")
	}
	if utf8.RuneCountInString(email) > maxEmailLen {
		return errors.New("email is too long")
	}
	if !strings.Contains(email, "@") {
		return errors.New("email is malformed")
	}
	if utf8.RuneCountInString(r.Password) < minPasswordLen {
		return errors.New("password must be at least 6 characters")
	}
	if !r.Role.Valid() {
		return errors.New("role is not supported")
	}
	return nil
}

// PasswordReset is a single-use token that lets a user set a new password.
type PasswordReset struct {
	Token     string    `json:"token"     db:"token"`
	UserID    int       `json:"userId"    db:"user_id"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
}

// Expired reports whether the reset token is past its expiry.
func (p PasswordReset) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// NormalizeEmail lowercases and trims an email address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
