package config

import (
	"fmt"
	"strings"
	"time"
)

// MirrorMode selects where the client persists its session snapshot
// between process restarts.
type MirrorMode string

const (
	// MirrorModeMemory keeps the snapshot in process memory only.
	MirrorModeMemory MirrorMode = "memory"
	// MirrorModeFile persists the snapshot to a local JSON file.
	MirrorModeFile MirrorMode = "file"
	// MirrorModeRedis persists the snapshot to Redis.
	MirrorModeRedis MirrorMode = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for MirrorMode.
func (m *MirrorMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "memory", "file", "redis":
		*m = MirrorMode(v)
		return nil
	default:
		return fmt.Errorf("invalid MirrorMode: %q (valid options: memory, file, redis)", v)
	}
}

// ClientConfig configures the session controller, identity transport and
// route guard.
type ClientConfig struct {
	// BaseURL is the identity backend the transport talks to.
	BaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8080"`

	// CheckTimeout bounds a single session verification round trip.
	CheckTimeout time.Duration `env:"CHECK_TIMEOUT" envDefault:"8s"`

	// GuardWaitTimeout bounds how long a navigation waits for an
	// in-flight verification before denying.
	GuardWaitTimeout time.Duration `env:"GUARD_WAIT_TIMEOUT" envDefault:"10s"`

	// DemoMode enables the offline demo fallback when the backend is
	// unreachable during login.
	DemoMode bool `env:"DEMO_MODE" envDefault:"true"`

	// DemoWindow is the lifetime of a demo session.
	DemoWindow time.Duration `env:"DEMO_WINDOW" envDefault:"24h"`

	// LegacyShape toggles decoding of the pre-migration response
	// envelope ({success, user} instead of {isSuccess, data}).
	LegacyShape bool `env:"LEGACY_SHAPE" envDefault:"false"`

	// Mirror selects the snapshot persistence backend. The file backend is
	// the default so CLI sessions survive across invocations.
	Mirror MirrorMode `env:"MIRROR" envDefault:"file"`

	// MirrorFile is the snapshot path when Mirror is "file".
	MirrorFile string `env:"MIRROR_FILE" envDefault:".workdesk-session.json"`

	// MirrorRedisAddr is the Redis address when Mirror is "redis".
	MirrorRedisAddr string `env:"MIRROR_REDIS_ADDR" envDefault:"localhost:6379"`
}

// Sanitize applies guardrails to client configuration values.
func (c *ClientConfig) Sanitize() {
	if c.CheckTimeout <= 0 {
		c.CheckTimeout = 8 * time.Second
	}
	if c.GuardWaitTimeout <= 0 {
		c.GuardWaitTimeout = 10 * time.Second
	}
	if c.DemoWindow <= 0 {
		c.DemoWindow = 24 * time.Hour
	}
}
