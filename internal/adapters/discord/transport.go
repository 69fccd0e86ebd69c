package discord

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lsdc2-commands/internal/adapters/metrics"
)

// MetricsRoundTripper records every Discord request by scope, method and status.
type MetricsRoundTripper struct {
	Proxied http.RoundTripper
}

func NewMetricsRoundTripper(proxied http.RoundTripper) *MetricsRoundTripper {
	if proxied == nil {
		proxied = http.DefaultTransport
	}
	return &MetricsRoundTripper{Proxied: proxied}
}

func (mrt *MetricsRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := mrt.Proxied.RoundTrip(req)
	duration := time.Since(start).Seconds()

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}

	scope := scopeLabel(req.URL.Path)
	metrics.DiscordRequestDuration.WithLabelValues(scope, req.Method, status).Observe(duration)
	metrics.DiscordRequests.WithLabelValues(scope, req.Method, status).Inc()

	return resp, err
}

func scopeLabel(path string) string {
	switch {
	case strings.Contains(path, "/guilds/") && strings.Contains(path, "/commands"):
		return "guild"
	case strings.Contains(path, "/commands"):
		return "global"
	default:
		return "other"
	}
}

// RateLimitBodyRoundTripper turns a 429 without a JSON object body, such as
// an edge throttling page, into Discord's rate limit payload so discordgo
// reports it as a RateLimitError. The delay comes from the Retry-After header.
type RateLimitBodyRoundTripper struct {
	Proxied http.RoundTripper
	now     func() time.Time
}

func NewRateLimitBodyRoundTripper(proxied http.RoundTripper) *RateLimitBodyRoundTripper {
	if proxied == nil {
		proxied = http.DefaultTransport
	}
	return &RateLimitBodyRoundTripper{Proxied: proxied, now: time.Now}
}

type rateLimitPayload struct {
	Message    string  `json:"message"`
	RetryAfter float64 `json:"retry_after"`
	Global     bool    `json:"global"`
}

func (rt *RateLimitBodyRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := rt.Proxied.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusTooManyRequests {
		return resp, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, []byte("{")) && json.Valid(trimmed) {
		resp.Body = io.NopCloser(bytes.NewReader(body))
		return resp, nil
	}

	payload, err := json.Marshal(rateLimitPayload{
		Message:    "You are being rate limited.",
		RetryAfter: retryAfterSeconds(resp.Header.Get("Retry-After"), rt.now()),
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("Rewrote non-JSON rate limit response", "path", req.URL.Path, "retry_after", resp.Header.Get("Retry-After"))

	resp.Body = io.NopCloser(bytes.NewReader(payload))
	resp.ContentLength = int64(len(payload))
	resp.Header.Set("Content-Type", "application/json")
	resp.Header.Set("Content-Length", strconv.Itoa(len(payload)))
	return resp, nil
}

// retryAfterSeconds reads a Retry-After value given either in seconds or as
// an HTTP date. Unparseable or past values yield 0.
func retryAfterSeconds(value string, now time.Time) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		if secs < 0 {
			return 0
		}
		return secs
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d.Seconds()
		}
	}
	return 0
}
