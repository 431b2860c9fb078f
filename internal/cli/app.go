// Package cli wires the application together for the command-line entry
// points: configuration, logging, the view-state database, the document
// engine and the session registry.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/bnema/folio/internal/build"
	"github.com/bnema/folio/internal/config"
	"github.com/bnema/folio/internal/engine"
	"github.com/bnema/folio/internal/logging"
	"github.com/bnema/folio/internal/persistence/sqlite"
	"github.com/bnema/folio/internal/viewer"
	"github.com/bnema/folio/internal/viewer/event"
)

// App holds the wired dependencies shared by the CLI commands.
type App struct {
	Config    *config.Config
	ConfigMgr *config.Manager
	BuildInfo build.Info
	Logger    zerolog.Logger
	Bus       *event.Bus
	Engine    engine.Engine
	Registry  *viewer.Registry
	Store     viewer.ViewStateStore

	db  *sql.DB
	ctx context.Context
}

// NewApp loads configuration and constructs the shared dependencies.
func NewApp() (*App, error) {
	mgr, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("config manager: %w", err)
	}
	if err := mgr.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := mgr.Get()

	logCfg := logging.DefaultConfig()
	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if parsed, err := logging.ParseLevel(cfg.Logging.Level); err == nil {
		logCfg.Level = parsed
	}
	if cfg.Logging.Format != "" {
		logCfg.Format = cfg.Logging.Format
	}
	logger := logging.New(logCfg)
	ctx := logging.WithContext(context.Background(), logger)

	dbFile := cfg.Database.Path
	if dbFile == "" {
		if dbFile, err = config.GetDatabaseFile(); err != nil {
			return nil, fmt.Errorf("database path: %w", err)
		}
	}
	db, err := sqlite.NewConnection(ctx, dbFile)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	var store viewer.ViewStateStore
	if cfg.Viewer.RestoreViewState {
		store = sqlite.NewViewStateRepository(db)
	}

	bus := event.NewBus(logger)
	eng := engine.NewFitz()
	registry := viewer.NewRegistry(eng, bus, store, sessionOptions(cfg), logger)

	return &App{
		Config:    cfg,
		ConfigMgr: mgr,
		Logger:    logger,
		Bus:       bus,
		Engine:    eng,
		Registry:  registry,
		Store:     store,
		db:        db,
		ctx:       ctx,
	}, nil
}

func sessionOptions(cfg *config.Config) viewer.Options {
	return viewer.Options{
		MinZoom:        cfg.Viewer.MinZoom,
		MaxZoom:        cfg.Viewer.MaxZoom,
		ZoomStep:       cfg.Viewer.ZoomStep,
		WheelZoomStep:  cfg.Viewer.WheelZoomStep,
		RenderDebounce: cfg.Viewer.RenderDebounce,
		ThumbnailScale: cfg.Viewer.ThumbnailScale,
		ThumbnailWidth: cfg.Viewer.ThumbnailWidth,
	}
}

// Context returns the app context carrying the logger.
func (a *App) Context() context.Context { return a.ctx }

// Close tears down the open sessions and releases the database.
func (a *App) Close() error {
	if err := a.Registry.CloseAll(a.ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("session teardown failed")
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
