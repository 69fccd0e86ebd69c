package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Token             string
	AppID             string
	GuildID           string
	RequestTimeout    time.Duration
	MaxRetries        int
	RetryBaseDelay    time.Duration
	RetryMaxDelay     time.Duration
	RequestsPerSecond float64
	DatabaseURL       string
	PushgatewayURL    string
	LogLevel          string
	LogJSON           bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	token := secretOrEnv("discord_token", "DISCORD_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is not set (via secret or env var)")
	}

	appID := secretOrEnv("discord_app_id", "DISCORD_APP_ID")
	if appID == "" {
		return nil, fmt.Errorf("DISCORD_APP_ID is not set (via secret or env var)")
	}

	cfg := &Config{
		Token:             token,
		AppID:             appID,
		GuildID:           envString("DISCORD_GUILD_ID", ""),
		RequestTimeout:    envDuration("REQUEST_TIMEOUT", 20*time.Second),
		MaxRetries:        envInt("MAX_RETRIES", 5),
		RetryBaseDelay:    envDuration("RETRY_BASE_DELAY", 500*time.Millisecond),
		RetryMaxDelay:     envDuration("RETRY_MAX_DELAY", 30*time.Second),
		RequestsPerSecond: envFloat("REQUESTS_PER_SECOND", 5),
		DatabaseURL:       secretOrEnv("database_url", "DATABASE_URL"),
		PushgatewayURL:    envString("PUSHGATEWAY_URL", ""),
		LogLevel:          strings.ToLower(envString("LOG_LEVEL", "info")),
		LogJSON:           envBool("LOG_JSON", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var secretsDir = "/run/secrets/"

func readSecret(name string) string {
	data, err := os.ReadFile(secretsDir + name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func secretOrEnv(secret, key string) string {
	if v := readSecret(secret); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(key))
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
