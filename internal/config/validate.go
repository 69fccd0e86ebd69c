package config

import (
	"errors"
	"fmt"
	"time"
)

// Validation constants define acceptable bounds for configuration values
const (
	// Token validation
	minTokenLength = 50 // Discord tokens are typically 50+ characters

	// Snowflake ids are decimal uint64
	maxSnowflakeLength = 20

	// RequestTimeout validation
	minRequestTimeout = 1 * time.Second
	maxRequestTimeout = 2 * time.Minute

	// Retry validation
	maxRetries        = 20
	minRetryBaseDelay = 10 * time.Millisecond
	maxRetryMaxDelay  = 10 * time.Minute

	// RequestsPerSecond validation
	maxRequestsPerSecond = 50 // Discord's global limit per bot
)

var logLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate checks if the configuration values are valid and within acceptable ranges.
// It returns all validation errors at once using errors.Join.
//
// Validated fields:
//   - Token: at least 50 characters
//   - AppID: required snowflake, GuildID: snowflake when set
//   - RequestTimeout: between 1s and 2m
//   - MaxRetries: between 0 and 20
//   - RetryBaseDelay / RetryMaxDelay: 10ms <= base <= max <= 10m
//   - RequestsPerSecond: above 0 and at most 50
//   - LogLevel: debug, info, warn or error
func (c *Config) Validate() error {
	var errs []error

	if err := c.validateToken(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateIDs(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateRequestTimeout(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateRetry(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateRequestsPerSecond(); err != nil {
		errs = append(errs, err)
	}

	if _, ok := logLevels[c.LogLevel]; !ok {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %w", errors.Join(errs...))
	}

	return nil
}

// validateToken ensures the Discord token is present and has valid length
func (c *Config) validateToken() error {
	if c.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required but not set")
	}

	if len(c.Token) < minTokenLength {
		return fmt.Errorf(
			"DISCORD_TOKEN appears invalid (too short: %d chars, expected %d+)",
			len(c.Token), minTokenLength,
		)
	}

	return nil
}

func (c *Config) validateIDs() error {
	var errs []error

	if c.AppID == "" {
		errs = append(errs, fmt.Errorf("DISCORD_APP_ID is required but not set"))
	} else if !isSnowflake(c.AppID) {
		errs = append(errs, fmt.Errorf("DISCORD_APP_ID must be a numeric snowflake, got %q", c.AppID))
	}

	if c.GuildID != "" && !isSnowflake(c.GuildID) {
		errs = append(errs, fmt.Errorf("DISCORD_GUILD_ID must be a numeric snowflake, got %q", c.GuildID))
	}

	return errors.Join(errs...)
}

func (c *Config) validateRequestTimeout() error {
	if c.RequestTimeout < minRequestTimeout || c.RequestTimeout > maxRequestTimeout {
		return fmt.Errorf(
			"REQUEST_TIMEOUT must be between %v and %v, got %v",
			minRequestTimeout, maxRequestTimeout, c.RequestTimeout,
		)
	}
	return nil
}

func (c *Config) validateRetry() error {
	var errs []error

	if c.MaxRetries < 0 || c.MaxRetries > maxRetries {
		errs = append(errs, fmt.Errorf("MAX_RETRIES must be between 0 and %d, got %d", maxRetries, c.MaxRetries))
	}

	if c.RetryBaseDelay < minRetryBaseDelay {
		errs = append(errs, fmt.Errorf("RETRY_BASE_DELAY must be at least %v, got %v", minRetryBaseDelay, c.RetryBaseDelay))
	}

	if c.RetryMaxDelay > maxRetryMaxDelay {
		errs = append(errs, fmt.Errorf("RETRY_MAX_DELAY must be at most %v, got %v", maxRetryMaxDelay, c.RetryMaxDelay))
	}

	if c.RetryBaseDelay > c.RetryMaxDelay {
		errs = append(errs, fmt.Errorf(
			"RETRY_BASE_DELAY (%v) must not exceed RETRY_MAX_DELAY (%v)",
			c.RetryBaseDelay, c.RetryMaxDelay,
		))
	}

	return errors.Join(errs...)
}

func (c *Config) validateRequestsPerSecond() error {
	if c.RequestsPerSecond <= 0 || c.RequestsPerSecond > maxRequestsPerSecond {
		return fmt.Errorf(
			"REQUESTS_PER_SECOND must be above 0 and at most %d, got %v (hint: the default of 5 is safe)",
			maxRequestsPerSecond, c.RequestsPerSecond,
		)
	}
	return nil
}

func isSnowflake(id string) bool {
	if len(id) == 0 || len(id) > maxSnowflakeLength {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
