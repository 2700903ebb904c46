package identserver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
	"github.com/workdesk/workdesk-go/internal/domain/model"
	apperrors "github.com/workdesk/workdesk-go/internal/errors"
)

func newTestService(t *testing.T, opts Options) (*Service, *MemoryUserRepo) {
	t.Helper()
	users := NewMemoryUserRepo()
	opts.Users = users
	if opts.Sessions == nil {
		opts.Sessions = NewMemorySessionStore()
	}
	if opts.Resets == nil {
		opts.Resets = NewMemoryResetStore()
	}
	svc := NewService(opts)

	_, err := svc.CreateUser(context.Background(), &model.CreateUserRequest{
		FirstName:    "Ada",
		LastName:     "Admin",
		Email:        "ada@example.com",
		Password:     "admin123",
		Role:         domainauth.RoleAdmin,
		Position:     "System Administrator",
		DepartmentID: 1,
	})
	require.NoError(t, err)
	return svc, users
}

func TestLogin_Success(t *testing.T) {
	svc, _ := newTestService(t, Options{})

	sess, err := svc.Login(context.Background(), LoginInput{
		Email:    "Ada@Example.com",
		Password: "admin123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, domainauth.RoleAdmin, sess.Role)
	assert.Equal(t, "System Administrator", sess.Position)
	assert.Equal(t, 1, sess.DepartmentID)
	assert.False(t, sess.Remembered)

	got, err := svc.GetSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, got.UserID)
}

func TestLogin_RememberMeExtendsExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, Options{Now: func() time.Time { return now }})

	short, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "admin123"})
	require.NoError(t, err)
	long, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "admin123", RememberMe: true})
	require.NoError(t, err)

	assert.Equal(t, now.Add(DefaultSessionTTL), short.ExpiresAt)
	assert.Equal(t, now.Add(DefaultRememberedTTL), long.ExpiresAt)
	assert.True(t, long.Remembered)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestService(t, Options{})

	_, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidCredentials(err))
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _ := newTestService(t, Options{})

	_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "x"})
	require.Error(t, err)
	assert.True(t, apperrors.IsAccountNotFound(err))
}

func TestLogin_ThrottleLocksAfterRepeatedFailures(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, Options{
		MaxFailures: 3,
		LockWindow:  15 * time.Minute,
		Now:         func() time.Time { return now },
	})

	for range 3 {
		_, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "wrong"})
		require.Error(t, err)
	}

	// Even the correct password is rejected while locked.
	_, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "admin123"})
	require.Error(t, err)
	assert.True(t, apperrors.IsTooManyAttempts(err))

	// The lock ages out with the window.
	now = now.Add(16 * time.Minute)
	_, err = svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "admin123"})
	assert.NoError(t, err)
}

func TestLogin_SuccessClearsFailureCount(t *testing.T) {
	svc, _ := newTestService(t, Options{MaxFailures: 3})

	for range 2 {
		_, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "wrong"})
		require.Error(t, err)
	}
	_, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "admin123"})
	require.NoError(t, err)

	// Two more failures after a success must not lock.
	for range 2 {
		_, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "wrong"})
		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidCredentials(err))
	}
}

func TestLogin_DisabledAccount(t *testing.T) {
	svc, users := newTestService(t, Options{})
	user, err := users.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	users.byID[user.ID].IsActive = false

	_, err = svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "admin123"})
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestGetSession_ExpiredSessionIsDeleted(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewMemorySessionStore()
	svc, _ := newTestService(t, Options{
		Sessions: store,
		Now:      func() time.Time { return now },
	})

	sess, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "admin123"})
	require.NoError(t, err)

	now = now.Add(DefaultSessionTTL + time.Minute)
	_, err = svc.GetSession(context.Background(), sess.ID)
	require.Error(t, err)

	// Deleted, not just rejected.
	_, err = store.Get(context.Background(), sess.ID)
	assert.Error(t, err)
}

func TestGetSession_RememberedSessionSlides(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewMemorySessionStore()
	svc, _ := newTestService(t, Options{
		Sessions: store,
		Now:      func() time.Time { return now },
	})

	remembered, err := svc.Login(context.Background(), LoginInput{
		Email: "ada@example.com", Password: "admin123", RememberMe: true,
	})
	require.NoError(t, err)
	plain, err := svc.Login(context.Background(), LoginInput{
		Email: "ada@example.com", Password: "admin123",
	})
	require.NoError(t, err)

	// A week later the remembered session is still good, and verifying it
	// pushes the expiry a full window out from now.
	now = now.Add(7 * 24 * time.Hour)
	got, err := svc.GetSession(context.Background(), remembered.ID)
	require.NoError(t, err)
	assert.Equal(t, now.Add(DefaultRememberedTTL), got.ExpiresAt)

	// The store itself renews on the wall clock.
	stored, err := store.Get(context.Background(), remembered.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultRememberedTTL), stored.ExpiresAt, time.Minute)

	// Plain sessions do not slide: the one from a week ago is gone.
	_, err = svc.GetSession(context.Background(), plain.ID)
	assert.Error(t, err)
}

func TestLogout_MissingSessionIsNoop(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	assert.NoError(t, svc.Logout(context.Background(), ""))
	assert.NoError(t, svc.Logout(context.Background(), "does-not-exist"))
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _ := newTestService(t, Options{})

	token, err := svc.ForgotPassword(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, svc.ResetPassword(context.Background(), token, "brandnew1"))

	// Old password no longer works, new one does.
	_, err = svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "admin123"})
	require.Error(t, err)
	_, err = svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "brandnew1"})
	assert.NoError(t, err)
}

func TestResetPassword_TokenIsSingleUse(t *testing.T) {
	svc, _ := newTestService(t, Options{})

	token, err := svc.ForgotPassword(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.ResetPassword(context.Background(), token, "brandnew1"))

	err = svc.ResetPassword(context.Background(), token, "another1")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	resets := NewMemoryResetStore()
	resets.now = func() time.Time { return now }
	svc, _ := newTestService(t, Options{
		Resets: resets,
		Now:    func() time.Time { return now },
	})

	token, err := svc.ForgotPassword(context.Background(), "ada@example.com")
	require.NoError(t, err)

	now = now.Add(DefaultResetTTL + time.Minute)
	err = svc.ResetPassword(context.Background(), token, "brandnew1")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	svc, _ := newTestService(t, Options{})

	_, err := svc.ForgotPassword(context.Background(), "ghost@example.com")
	require.Error(t, err)
	assert.True(t, apperrors.IsAccountNotFound(err))
}

func TestResetPassword_ShortPassword(t *testing.T) {
	svc, _ := newTestService(t, Options{})

	err := svc.ResetPassword(context.Background(), "whatever", "ab")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t, Options{})

	_, err := svc.CreateUser(context.Background(), &model.CreateUserRequest{
		Email:    "ada@example.com",
		Password: "whatever1",
		Role:     domainauth.RoleDeveloper,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}
