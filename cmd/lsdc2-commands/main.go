package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"lsdc2-commands/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	InitLogger("info", false)

	inv, err := parseArgs(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return exitError
	}
	InitLogger(cfg.LogLevel, cfg.LogJSON)

	if inv.needsAudit() && cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required", "command", inv.command)
		return exitError
	}

	ctx, stop := NotifyShutdown(context.Background())
	defer stop()

	app, err := NewApp(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return exitError
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		app.Shutdown(shutdownCtx)
	}()

	return runCommand(ctx, app.service, inv, cfg.GuildID, os.Stdout)
}
