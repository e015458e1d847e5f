package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/taskflow-backend/internal/data/db"
	httpserver "github.com/yungbote/taskflow-backend/internal/http"
	"github.com/yungbote/taskflow-backend/internal/observability"
	"github.com/yungbote/taskflow-backend/internal/platform/logger"
	"github.com/yungbote/taskflow-backend/internal/realtime"
	"github.com/yungbote/taskflow-backend/internal/realtime/bus"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *httpserver.Server
	Cfg      Config
	Repos    Repos
	Services Services
	Hub      *realtime.Hub
	Bus      bus.Bus

	shutdownTracing func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := build(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	shutdownTracing, err := observability.InitTracing(ctx, log, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	theDB, err := openDB(log, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrateAll(theDB); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	eventBus, err := openBus(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	hub := realtime.NewHub(log)

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, eventBus)
	if err := seedUsers(ctx, log, serviceset.Auth, cfg.SeedFile); err != nil {
		_ = eventBus.Close()
		return nil, err
	}
	handlerset := wireHandlers(log, theDB, serviceset, hub)
	mw := wireMiddleware(log, serviceset)

	return &App{
		Log:             log,
		DB:              theDB,
		Server:          wireServer(log, cfg, handlerset, mw),
		Cfg:             cfg,
		Repos:           reposet,
		Services:        serviceset,
		Hub:             hub,
		Bus:             eventBus,
		shutdownTracing: shutdownTracing,
	}, nil
}

func openDB(log *logger.Logger, cfg Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case DriverSQLite:
		return db.OpenSQLite(cfg.SQLitePath, log)
	default:
		return db.OpenPostgres(cfg.Postgres(), log)
	}
}

// openBus fans activity out through Redis when configured so every replica's
// hub sees every event. A single process uses the in-memory bus.
func openBus(ctx context.Context, log *logger.Logger, cfg Config) (bus.Bus, error) {
	if cfg.RedisAddr == "" {
		return bus.NewMemoryBus(log), nil
	}
	b, err := bus.NewRedisBus(ctx, cfg.Redis(), log)
	if err != nil {
		return nil, fmt.Errorf("init redis bus: %w", err)
	}
	return b, nil
}

// Run serves HTTP and forwards bus events to the hub until ctx is cancelled
// or either side fails, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Bus.StartForwarder(gctx, a.Hub.Broadcast)
	})
	g.Go(func() error {
		addr := ":" + a.Cfg.Port
		a.Log.Info("HTTP server listening", "addr", addr)
		return a.Server.Run(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.HTTPShutdownTimeout)
		defer cancel()
		a.Log.Info("Shutting down HTTP server", "timeout", a.Cfg.HTTPShutdownTimeout.String())
		return a.Server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			a.Log.Warn("bus close failed", "error", err)
		}
	}
	if a.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdownTracing(ctx); err != nil {
			a.Log.Warn("tracing shutdown failed", "error", err)
		}
		cancel()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
