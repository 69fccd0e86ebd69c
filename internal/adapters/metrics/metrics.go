package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DiscordRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lsdc2_discord_requests_total",
		Help: "Total number of Discord application command API requests",
	}, []string{"scope", "method", "status"})

	DiscordRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lsdc2_discord_request_duration_seconds",
		Help:    "Duration of Discord application command API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"scope", "method", "status"})

	DiscordRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lsdc2_discord_retries_total",
		Help: "Total number of retried Discord requests by error kind",
	}, []string{"kind"})

	CommandOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lsdc2_command_operations_total",
		Help: "Total number of command mutations by action and outcome",
	}, []string{"action", "outcome"})
)
