// Package identserver implements the identity backend: password login with
// throttling, cookie-backed server sessions, and the password reset flow. It
// serves the contract the session controller's transport speaks.
package identserver

import (
	"context"
	"time"

	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
	"github.com/workdesk/workdesk-go/internal/domain/model"
)

// UserRepository provides account lookups and password updates. Missing users
// are reported with data.ErrUserNotFound.
type UserRepository interface {
	Create(ctx context.Context, req *model.CreateUserRequest, passwordHash string) (*model.User, error)
	GetByID(ctx context.Context, id int) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, limit, offset int) ([]*model.User, error)
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
}

// SessionStore persists server sessions keyed by session ID.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	// Touch extends a live session by ttl from now (sliding expiration).
	Touch(ctx context.Context, id string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// ResetTokenStore persists single-use password reset tokens. Consume removes
// the token; missing or expired tokens are reported with
// data.ErrResetTokenNotFound.
type ResetTokenStore interface {
	Save(ctx context.Context, reset model.PasswordReset) error
	Consume(ctx context.Context, token string) (model.PasswordReset, error)
}
