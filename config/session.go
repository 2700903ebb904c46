package config

import "time"

// SessionConfig contains server-side session and login throttle
// configuration.
type SessionConfig struct {
	// TTL is the lifetime of a standard session.
	TTL time.Duration `env:"TTL" envDefault:"8h"`

	// RememberedTTL is the lifetime of a remember-me session.
	RememberedTTL time.Duration `env:"REMEMBERED_TTL" envDefault:"720h"`

	// ResetTTL is the lifetime of a password reset token.
	ResetTTL time.Duration `env:"RESET_TTL" envDefault:"1h"`

	// MaxLoginFailures is the number of failed logins before an email
	// is locked out for LockWindow.
	MaxLoginFailures int `env:"MAX_LOGIN_FAILURES" envDefault:"5"`

	// LockWindow is how long login failures count against an email.
	LockWindow time.Duration `env:"LOCK_WINDOW" envDefault:"15m"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.TTL <= 0 {
		s.TTL = 8 * time.Hour
	}
	if s.RememberedTTL < s.TTL {
		s.RememberedTTL = s.TTL
	}
	if s.ResetTTL <= 0 {
		s.ResetTTL = time.Hour
	}
	if s.MaxLoginFailures <= 0 {
		s.MaxLoginFailures = 5
	}
	if s.LockWindow <= 0 {
		s.LockWindow = 15 * time.Minute
	}
}
