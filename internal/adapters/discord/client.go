package discord

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"lsdc2-commands/internal/adapters/metrics"
	"lsdc2-commands/internal/config"
	"lsdc2-commands/internal/core/domain"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

type CommandSession interface {
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandCreate(appID, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
	RequestWithBucketID(method, urlStr string, data interface{}, bucketID string, options ...discordgo.RequestOption) ([]byte, error)
}

// CommandClient manages the application commands of one Discord application.
// Calls are serialised: at most one request is in flight per client.
type CommandClient struct {
	session CommandSession
	appID   string
	retry   RetryPolicy
	limiter *rate.Limiter

	mu    sync.Mutex
	sleep func(ctx context.Context, d time.Duration) error
}

func NewCommandClient(session CommandSession, cfg *config.Config) *CommandClient {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &CommandClient{
		session: session,
		appID:   cfg.AppID,
		retry: RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.RetryBaseDelay,
			MaxDelay:   cfg.RetryMaxDelay,
		},
		limiter: rate.NewLimiter(limit, 1),
		sleep:   sleepContext,
	}
}

func (c *CommandClient) ListCommands(ctx context.Context, scope domain.Scope) ([]domain.Command, error) {
	var cmds []*discordgo.ApplicationCommand
	err := c.do(ctx, "list", scope, func(opts ...discordgo.RequestOption) error {
		var err error
		cmds, err = c.session.ApplicationCommands(c.appID, scope.GuildID(), opts...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list %s commands: %w", scope, err)
	}

	return fromDiscordCommands(cmds), nil
}

// CreateCommand registers cmd in scope. Discord treats a create with an
// existing name as an overwrite of that command.
func (c *CommandClient) CreateCommand(ctx context.Context, scope domain.Scope, cmd domain.Command) (domain.Command, error) {
	cmd = cmd.Normalized()
	if err := cmd.Validate(); err != nil {
		return domain.Command{}, fmt.Errorf("create %s command %q: %w", scope, cmd.Name, err)
	}

	var created *discordgo.ApplicationCommand
	err := c.do(ctx, "create", scope, func(opts ...discordgo.RequestOption) error {
		var err error
		created, err = c.session.ApplicationCommandCreate(c.appID, scope.GuildID(), toDiscordCommand(cmd), opts...)
		return err
	})
	if err != nil {
		return domain.Command{}, fmt.Errorf("create %s command %q: %w", scope, cmd.Name, err)
	}

	return fromDiscordCommand(created), nil
}

// UpdateCommand applies a partial update; unset patch fields keep their
// remote value.
func (c *CommandClient) UpdateCommand(ctx context.Context, scope domain.Scope, id string, patch domain.CommandPatch) (domain.Command, error) {
	if id == "" {
		return domain.Command{}, fmt.Errorf("update %s command: %w", scope, domain.NewValidationError("command id is required"))
	}
	if err := patch.Validate(); err != nil {
		return domain.Command{}, fmt.Errorf("update %s command %s: %w", scope, id, err)
	}

	endpoint := commandEndpoint(c.appID, scope, id)

	var updated discordgo.ApplicationCommand
	err := c.do(ctx, "update", scope, func(opts ...discordgo.RequestOption) error {
		body, err := c.session.RequestWithBucketID(http.MethodPatch, endpoint, toPatchBody(patch), endpoint, opts...)
		if err != nil {
			return err
		}
		if err := discordgo.Unmarshal(body, &updated); err != nil {
			return fmt.Errorf("%w: %w", discordgo.ErrJSONUnmarshal, err)
		}
		return nil
	})
	if err != nil {
		return domain.Command{}, fmt.Errorf("update %s command %s: %w", scope, id, err)
	}

	return fromDiscordCommand(&updated), nil
}

func (c *CommandClient) DeleteCommand(ctx context.Context, scope domain.Scope, id string) error {
	if id == "" {
		return fmt.Errorf("delete %s command: %w", scope, domain.NewValidationError("command id is required"))
	}

	err := c.do(ctx, "delete", scope, func(opts ...discordgo.RequestOption) error {
		return c.session.ApplicationCommandDelete(c.appID, scope.GuildID(), id, opts...)
	})
	if err != nil {
		return fmt.Errorf("delete %s command %s: %w", scope, id, err)
	}

	return nil
}

// do runs call under the client lock, pacing requests through the limiter
// and retrying throttled or unavailable responses per the retry policy.
func (c *CommandClient) do(ctx context.Context, op string, scope domain.Scope, call func(opts ...discordgo.RequestOption) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err := call(discordgo.WithContext(ctx), discordgo.WithRetryOnRatelimit(false))
		if err == nil {
			slog.Debug("Discord request succeeded", "op", op, "scope", scope.String(), "attempts", attempt+1)
			return nil
		}

		apiErr := classify(err)
		if !apiErr.Retryable() || attempt >= c.retry.MaxRetries || ctx.Err() != nil {
			return apiErr
		}

		delay := c.retry.Delay(attempt+1, apiErr.RetryAfter)
		metrics.DiscordRetries.WithLabelValues(domain.KindOf(apiErr)).Inc()
		slog.Warn("Retrying Discord request",
			"op", op,
			"scope", scope.String(),
			"attempt", attempt+1,
			"delay", delay,
			"error", apiErr,
		)

		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func commandEndpoint(appID string, scope domain.Scope, id string) string {
	if scope.IsGlobal() {
		return discordgo.EndpointApplicationGlobalCommand(appID, id)
	}
	return discordgo.EndpointApplicationGuildCommand(appID, scope.GuildID(), id)
}
