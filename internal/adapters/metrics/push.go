package metrics

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const pushJob = "lsdc2_commands"

// Push sends the collected metrics of one run to a Pushgateway.
// A blank url disables pushing.
func Push(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	return push.New(url, pushJob).
		Gatherer(prometheus.DefaultGatherer).
		PushContext(ctx)
}

// PushOrLog pushes and only logs failures; metrics never fail a run.
func PushOrLog(ctx context.Context, url string) {
	if err := Push(ctx, url); err != nil {
		slog.Warn("Failed to push metrics", "url", url, "error", err)
		return
	}
	if url != "" {
		slog.Debug("Metrics pushed", "url", url)
	}
}
