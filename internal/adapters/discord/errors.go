package discord

import (
	"errors"
	"net/http"
	"strings"

	"lsdc2-commands/internal/core/domain"

	"github.com/bwmarrin/discordgo"
)

// JSON error codes that refine the HTTP status.
const (
	codeUnknownApplication = 10002
	codeUnknownGuild       = 10004
	codeUnknownCommand     = 10063
	codeMissingAccess      = 50001
)

// classify maps a discordgo failure onto the domain error taxonomy.
func classify(err error) *domain.APIError {
	if err == nil {
		return nil
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var rlErr *discordgo.RateLimitError
	if errors.As(err, &rlErr) {
		out := &domain.APIError{Kind: domain.ErrRateLimited, Status: http.StatusTooManyRequests, Err: err}
		if rlErr.RateLimit != nil && rlErr.TooManyRequests != nil {
			out.RetryAfter = rlErr.RetryAfter
			out.Message = rlErr.Message
		}
		return out
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		out := &domain.APIError{
			Kind:   kindForStatus(restErr.Response.StatusCode),
			Status: restErr.Response.StatusCode,
			Err:    err,
		}
		if restErr.Message != nil {
			out.Code = restErr.Message.Code
			out.Message = restErr.Message.Message
			if kind, ok := kindForCode(out.Code, isGuildRequest(restErr.Request)); ok {
				out.Kind = kind
			}
		}
		if out.Kind == domain.ErrRateLimited {
			rl := discordgo.TooManyRequests{}
			if discordgo.Unmarshal(restErr.ResponseBody, &rl) == nil {
				out.RetryAfter = rl.RetryAfter
			}
		}
		return out
	}

	if errors.Is(err, discordgo.ErrUnauthorized) {
		return &domain.APIError{Kind: domain.ErrAuth, Status: http.StatusUnauthorized, Err: err}
	}

	// discordgo retries 502 itself and then gives up with a plain error.
	if strings.HasPrefix(err.Error(), "Exceeded Max retries HTTP") {
		return &domain.APIError{Kind: domain.ErrUnavailable, Status: http.StatusBadGateway, Err: err}
	}

	return &domain.APIError{Kind: domain.ErrUnknown, Err: err}
}

func kindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return domain.ErrAuth
	case status == http.StatusNotFound:
		return domain.ErrNotFound
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return domain.ErrValidation
	case status == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case status >= 500:
		return domain.ErrUnavailable
	default:
		return domain.ErrUnknown
	}
}

// kindForCode resolves codes naming a missing resource. Discord answers 403
// Missing Access when the bot is not in the guild or the guild does not exist.
func kindForCode(code int, guildScoped bool) (error, bool) {
	switch code {
	case codeUnknownApplication, codeUnknownGuild, codeUnknownCommand:
		return domain.ErrNotFound, true
	case codeMissingAccess:
		if guildScoped {
			return domain.ErrNotFound, true
		}
	}
	return nil, false
}

func isGuildRequest(req *http.Request) bool {
	return req != nil && req.URL != nil && scopeLabel(req.URL.Path) == "guild"
}
