package identserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/workdesk/workdesk-go/internal/data"
	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
	"github.com/workdesk/workdesk-go/internal/domain/model"
	apperrors "github.com/workdesk/workdesk-go/internal/errors"
)

// Defaults applied when Options leave the corresponding field zero.
const (
	DefaultSessionTTL    = 8 * time.Hour
	DefaultRememberedTTL = 30 * 24 * time.Hour
	DefaultResetTTL      = time.Hour
	DefaultMaxFailures   = 5
	DefaultLockWindow    = 15 * time.Minute
)

// Options groups dependencies for Service.
type Options struct {
	Users    UserRepository
	Sessions SessionStore
	Resets   ResetTokenStore
	Logger   *slog.Logger

	SessionTTL    time.Duration
	RememberedTTL time.Duration
	ResetTTL      time.Duration
	MaxFailures   int
	LockWindow    time.Duration
	Now           func() time.Time
}

// Service orchestrates the identity backend's flows: credential checks with
// throttling, session lifecycle, and password resets.
type Service struct {
	users    UserRepository
	sessions SessionStore
	resets   ResetTokenStore
	logger   *slog.Logger
	throttle *loginThrottle

	sessionTTL    time.Duration
	rememberedTTL time.Duration
	resetTTL      time.Duration
	now           func() time.Time
}

var errSessionExpired = errors.New("session expired")

// NewService constructs a Service.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sessionTTL := opts.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	rememberedTTL := opts.RememberedTTL
	if rememberedTTL <= 0 {
		rememberedTTL = DefaultRememberedTTL
	}
	resetTTL := opts.ResetTTL
	if resetTTL <= 0 {
		resetTTL = DefaultResetTTL
	}
	maxFailures := opts.MaxFailures
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	lockWindow := opts.LockWindow
	if lockWindow <= 0 {
		lockWindow = DefaultLockWindow
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		users:         opts.Users,
		sessions:      opts.Sessions,
		resets:        opts.Resets,
		logger:        logger,
		throttle:      newLoginThrottle(maxFailures, lockWindow),
		sessionTTL:    sessionTTL,
		rememberedTTL: rememberedTTL,
		resetTTL:      resetTTL,
		now:           now,
	}
}

// LoginInput groups the credential parameters for Login.
type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
}

// Login verifies credentials and creates a session. Failures come back as
// classified AppErrors so the HTTP layer can map them to statuses.
func (s *Service) Login(ctx context.Context, input LoginInput) (domainauth.Session, error) {
	email := model.NormalizeEmail(input.Email)
	now := s.now()

	if s.throttle.locked(email, now) {
		s.logger.WarnContext(ctx, "login locked out", "email", email)
		return domainauth.Session{}, apperrors.TooManyAttempts("too many failed attempts, try again later")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			s.throttle.fail(email, now)
			return domainauth.Session{}, apperrors.AccountNotFound("no account for this email")
		}
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "look up account")
	}
	if !user.IsActive {
		return domainauth.Session{}, apperrors.Forbidden("account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.throttle.fail(email, now)
		return domainauth.Session{}, apperrors.InvalidCredentials("invalid email or password")
	}
	s.throttle.reset(email)

	ttl := s.sessionTTL
	if input.RememberMe {
		ttl = s.rememberedTTL
	}
	session := domainauth.Session{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		Role:         user.Role,
		Position:     user.Position,
		DepartmentID: user.DepartmentID,
		ExpiresAt:    now.Add(ttl),
		Remembered:   input.RememberMe,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "save session")
	}

	s.logger.InfoContext(ctx, "login succeeded",
		"user_id", user.ID, "role", user.Role, "remembered", input.RememberMe)
	return session, nil
}

// GetSession retrieves and validates a session by ID. Expired sessions are
// deleted on sight; remembered sessions have their expiry slid forward.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.Expired(s.now()) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, errSessionExpired
	}
	if session.Remembered {
		// Sliding expiration. A failed renewal still leaves a valid session.
		if touchErr := s.sessions.Touch(ctx, sessionID, s.rememberedTTL); touchErr != nil {
			s.logger.DebugContext(ctx, "session renewal failed", "error", touchErr)
		} else {
			session.ExpiresAt = s.now().Add(s.rememberedTTL)
		}
	}
	return &session, nil
}

// Logout removes a session. A missing session is not an error.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ForgotPassword issues a single-use reset token for the account. The token
// is returned for delivery; this service does not send mail itself.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return "", apperrors.AccountNotFound("no account for this email")
		}
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "look up account")
	}

	reset := model.PasswordReset{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.resetTTL),
	}
	if err := s.resets.Save(ctx, reset); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "save reset token")
	}

	s.logger.InfoContext(ctx, "password reset issued",
		"user_id", user.ID, "expires_at", reset.ExpiresAt)
	return reset.Token, nil
}

// ResetPassword consumes a reset token and installs a new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if utf8.RuneCountInString(newPassword) < 6 {
		return apperrors.Validation("password must be at least 6 characters")
	}

	reset, err := s.resets.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, data.ErrResetTokenNotFound) {
			return apperrors.Validation("invalid or expired reset token")
		}
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "consume reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "hash password")
	}
	if err := s.users.UpdatePassword(ctx, reset.UserID, string(hash)); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "update password")
	}

	s.logger.InfoContext(ctx, "password reset completed", "user_id", reset.UserID)
	return nil
}

// GetUser returns the full account record for an authenticated user.
func (s *Service) GetUser(ctx context.Context, id int) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return nil, apperrors.AccountNotFound("account no longer exists")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "look up account")
	}
	return user, nil
}

// ListUsers returns accounts ordered by ID, for the admin directory.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*model.User, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "list accounts")
	}
	return users, nil
}

// CreateUser hashes the password and stores a new account. Used by seeding
// and admin tooling.
func (s *Service) CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if req == nil {
		return nil, errors.New("create user request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "hash password")
	}
	user, err := s.users.Create(ctx, req, string(hash))
	if err != nil {
		if errors.Is(err, data.ErrEmailExists) {
			return nil, apperrors.Conflict("email already exists")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "create user")
	}
	return user, nil
}
