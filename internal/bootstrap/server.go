package bootstrap

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	goredis "github.com/redis/go-redis/v9"
	"github.com/workdesk/workdesk-go/config"
	redisstore "github.com/workdesk/workdesk-go/internal/adapters/redis"
	"github.com/workdesk/workdesk-go/internal/data"
	httpx "github.com/workdesk/workdesk-go/internal/http"
	"github.com/workdesk/workdesk-go/internal/identserver"
)

// IdentServer bundles the wired identity server components.
type IdentServer struct {
	Service *identserver.Service
	Handler http.Handler
}

// BuildIdentServer wires the identity service and its HTTP handler tree
// from Postgres-backed repositories and a Redis session store.
func BuildIdentServer(cfg config.AppConfig, db *sql.DB, redisClient goredis.UniversalClient, logger *slog.Logger) *IdentServer {
	if logger == nil {
		logger = slog.Default()
	}

	users := data.NewUserRepo(db)
	resets := data.NewPasswordResetRepo(db)
	sessions := redisstore.NewSessionStore(redisClient)

	svc := identserver.NewService(identserver.Options{
		Users:         users,
		Sessions:      sessions,
		Resets:        resets,
		Logger:        logger,
		SessionTTL:    cfg.Session.TTL,
		RememberedTTL: cfg.Session.RememberedTTL,
		ResetTTL:      cfg.Session.ResetTTL,
		MaxFailures:   cfg.Session.MaxLoginFailures,
		LockWindow:    cfg.Session.LockWindow,
	})

	handler := httpx.NewRouter(httpx.RouterOptions{
		Auth: &httpx.AuthHandlers{
			Svc:          svc,
			CookieDomain: cfg.HTTP.CookieDomain,
			Logger:       logger,
		},
		Directory: &httpx.DirectoryHandlers{Svc: svc},
		Health:    &httpx.HealthHandlers{DB: db, Redis: redisClient},
		Sessions:  svc,
		CSRF:      httpx.CSRFConfig{CookieDomain: cfg.HTTP.CookieDomain},
		Logger:    logger,
	})

	return &IdentServer{Service: svc, Handler: handler}
}

// SeedDevUsers creates the development accounts when they do not exist yet.
// Only called in dev mode.
func SeedDevUsers(ctx context.Context, svc *identserver.Service, logger *slog.Logger) {
	for _, req := range identserver.DevUsers() {
		if _, err := svc.CreateUser(ctx, req); err != nil {
			// Conflict means the account already exists; anything else
			// is worth surfacing.
			logger.DebugContext(ctx, "dev seed skipped", "email", req.Email, "error", err)
		} else {
			logger.InfoContext(ctx, "dev user seeded", "email", req.Email)
		}
	}
}
