package discord

import (
	"log/slog"
	"net/http"

	"lsdc2-commands/internal/config"

	"github.com/bwmarrin/discordgo"
)

// NewSession builds a REST-only session. No gateway connection is opened;
// throttling and retries are left to CommandClient.
func NewSession(cfg *config.Config) (*discordgo.Session, error) {
	discord, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		slog.Error("Failed to create discord session", "error", err)
		return nil, err
	}

	discord.Client = &http.Client{
		Timeout:   cfg.RequestTimeout,
		Transport: newTransport(http.DefaultTransport),
	}
	discord.ShouldRetryOnRateLimit = false
	discord.MaxRestRetries = 0

	return discord, nil
}

// newTransport records metrics for every attempt and normalises throttling
// responses before discordgo parses them.
func newTransport(base http.RoundTripper) http.RoundTripper {
	return NewMetricsRoundTripper(NewRateLimitBodyRoundTripper(base))
}
