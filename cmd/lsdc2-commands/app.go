package main

import (
	"context"
	"log/slog"

	"lsdc2-commands/internal/adapters/discord"
	"lsdc2-commands/internal/adapters/metrics"
	"lsdc2-commands/internal/adapters/storage/postgres"
	"lsdc2-commands/internal/config"
	"lsdc2-commands/internal/core/ports"
	"lsdc2-commands/internal/core/services/registration"

	"github.com/google/uuid"
)

type App struct {
	config  *config.Config
	runID   string
	audit   ports.AuditLog
	service *registration.Service
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	session, err := discord.NewSession(cfg)
	if err != nil {
		return nil, err
	}

	audit, err := newAuditLog(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := newApp(cfg, discord.NewCommandClient(session, cfg), audit)
	slog.Info("LSDC2 command tool starting", "run_id", app.runID, "app_id", cfg.AppID)
	return app, nil
}

func newApp(cfg *config.Config, api ports.CommandAPI, audit ports.AuditLog) *App {
	runID := uuid.NewString()
	return &App{
		config: cfg,
		runID:  runID,
		audit:  audit,
		service: registration.NewService(registration.Dependencies{
			API:   api,
			Audit: audit,
			RunID: runID,
		}),
	}
}

func newAuditLog(ctx context.Context, cfg *config.Config) (ports.AuditLog, error) {
	if cfg.DatabaseURL == "" {
		slog.Debug("DATABASE_URL not set, audit journal disabled")
		return ports.NopAudit{}, nil
	}

	store, err := postgres.NewAuditStore(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to audit database", "error", err)
		return nil, err
	}
	return store, nil
}

func (a *App) Shutdown(ctx context.Context) {
	slog.Debug("Shutting down...", "run_id", a.runID)

	if a.audit != nil {
		a.audit.Close()
	}

	if a.config != nil {
		metrics.PushOrLog(ctx, a.config.PushgatewayURL)
	}
}
