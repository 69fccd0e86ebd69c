package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// NotifyShutdown returns a context that is cancelled on SIGINT or SIGTERM.
func NotifyShutdown(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	go func() {
		defer signal.Stop(sc)
		select {
		case sig := <-sc:
			slog.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
