package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/workdesk/workdesk-go/config"
	"github.com/workdesk/workdesk-go/internal/adapters/demoauth"
	"github.com/workdesk/workdesk-go/internal/adapters/identityapi"
	"github.com/workdesk/workdesk-go/internal/adapters/mirror"
	"github.com/workdesk/workdesk-go/internal/guard"
	"github.com/workdesk/workdesk-go/internal/ports"
	"github.com/workdesk/workdesk-go/internal/service"
	"github.com/workdesk/workdesk-go/internal/session"
)

// SessionClient bundles the wired session controller components.
type SessionClient struct {
	Store     *session.Store
	Service   *service.SessionService
	Guard     *guard.Controller
	Transport *identityapi.Client
}

// BuildSessionClient wires the session store, identity transport, session
// service and route guard from client configuration. The navigator receives
// redirect signals from the service and guard.
func BuildSessionClient(cfg config.ClientConfig, nav ports.Navigator, logger *slog.Logger) (*SessionClient, error) {
	if logger == nil {
		logger = slog.Default()
	}

	mirrorStore, err := buildMirror(cfg)
	if err != nil {
		return nil, fmt.Errorf("build session mirror: %w", err)
	}

	store := session.NewStore(session.StoreOptions{
		Mirror:     mirrorStore,
		Logger:     logger,
		DemoWindow: cfg.DemoWindow,
	})

	// svc is assigned below; the transport callbacks only fire on live
	// traffic, well after wiring completes.
	var svc *service.SessionService

	transport, err := identityapi.NewClient(identityapi.Options{
		BaseURL:       cfg.BaseURL,
		LegacyShape:   cfg.LegacyShape,
		Logger:        logger,
		SessionMirror: mirrorStore,
		OnUnauthorized: func() {
			if svc != nil {
				svc.QuickLogout()
			}
		},
		OnForbidden: func() {
			if nav != nil {
				nav.NavigateTo(guard.PathProjects)
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build identity transport: %w", err)
	}

	var demo ports.DemoCatalog
	if cfg.DemoMode {
		demo = demoauth.NewCatalog()
	}

	svc = service.NewSessionService(service.SessionServiceOptions{
		Transport:    transport,
		Store:        store,
		Demo:         demo,
		Navigator:    nav,
		Mirror:       mirrorStore,
		Logger:       logger,
		CheckTimeout: cfg.CheckTimeout,
	})

	ctrl := guard.NewController(guard.ControllerOptions{
		Store:       store,
		Verifier:    svc,
		Logger:      logger,
		WaitTimeout: cfg.GuardWaitTimeout,
	})

	return &SessionClient{
		Store:     store,
		Service:   svc,
		Guard:     ctrl,
		Transport: transport,
	}, nil
}

//nolint:ireturn // the mirror backend is selected at runtime from config.
func buildMirror(cfg config.ClientConfig) (ports.MirrorStore, error) {
	switch cfg.Mirror {
	case config.MirrorModeFile:
		return mirror.NewFile(cfg.MirrorFile)
	case config.MirrorModeRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.MirrorRedisAddr})
		return mirror.NewRedis(client, "wdmirror:"), nil
	default:
		return mirror.NewMemory(), nil
	}
}
