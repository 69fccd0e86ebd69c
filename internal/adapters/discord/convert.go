package discord

import (
	"lsdc2-commands/internal/core/domain"

	"github.com/bwmarrin/discordgo"
)

func toDiscordCommand(c domain.Command) *discordgo.ApplicationCommand {
	cmd := &discordgo.ApplicationCommand{
		Type:                     discordgo.ApplicationCommandType(c.Type),
		Name:                     c.Name,
		Description:              c.Description,
		DefaultMemberPermissions: c.DefaultMemberPermissions,
		Options:                  toDiscordOptions(c.Options),
	}
	if c.NSFW {
		nsfw := true
		cmd.NSFW = &nsfw
	}
	if c.IntegrationTypes != nil {
		types := toIntegrationTypes(c.IntegrationTypes)
		cmd.IntegrationTypes = &types
	}
	if c.Contexts != nil {
		contexts := toContexts(c.Contexts)
		cmd.Contexts = &contexts
	}
	return cmd
}

func toDiscordOptions(opts []domain.Option) []*discordgo.ApplicationCommandOption {
	if opts == nil {
		return nil
	}
	out := make([]*discordgo.ApplicationCommandOption, len(opts))
	for i, opt := range opts {
		o := &discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionType(opt.Type),
			Name:         opt.Name,
			Description:  opt.Description,
			Required:     opt.Required,
			Autocomplete: opt.Autocomplete,
			Options:      toDiscordOptions(opt.Options),
		}
		for _, ch := range opt.Choices {
			o.Choices = append(o.Choices, &discordgo.ApplicationCommandOptionChoice{Name: ch.Name, Value: ch.Value})
		}
		out[i] = o
	}
	return out
}

func toIntegrationTypes(in []domain.IntegrationType) []discordgo.ApplicationIntegrationType {
	out := make([]discordgo.ApplicationIntegrationType, len(in))
	for i, v := range in {
		out[i] = discordgo.ApplicationIntegrationType(v)
	}
	return out
}

func toContexts(in []domain.ContextType) []discordgo.InteractionContextType {
	out := make([]discordgo.InteractionContextType, len(in))
	for i, v := range in {
		out[i] = discordgo.InteractionContextType(v)
	}
	return out
}

func fromDiscordCommand(c *discordgo.ApplicationCommand) domain.Command {
	if c == nil {
		return domain.Command{}
	}
	cmd := domain.Command{
		ID:                       c.ID,
		ApplicationID:            c.ApplicationID,
		GuildID:                  c.GuildID,
		Version:                  c.Version,
		Type:                     domain.CommandType(c.Type),
		Name:                     c.Name,
		Description:              c.Description,
		DefaultMemberPermissions: c.DefaultMemberPermissions,
		NSFW:                     c.NSFW != nil && *c.NSFW,
		Options:                  fromDiscordOptions(c.Options),
	}
	if c.IntegrationTypes != nil {
		for _, v := range *c.IntegrationTypes {
			cmd.IntegrationTypes = append(cmd.IntegrationTypes, domain.IntegrationType(v))
		}
	}
	if c.Contexts != nil {
		for _, v := range *c.Contexts {
			cmd.Contexts = append(cmd.Contexts, domain.ContextType(v))
		}
	}
	return cmd
}

func fromDiscordOptions(opts []*discordgo.ApplicationCommandOption) []domain.Option {
	if len(opts) == 0 {
		return nil
	}
	out := make([]domain.Option, 0, len(opts))
	for _, o := range opts {
		if o == nil {
			continue
		}
		opt := domain.Option{
			Type:         domain.OptionType(o.Type),
			Name:         o.Name,
			Description:  o.Description,
			Required:     o.Required,
			Autocomplete: o.Autocomplete,
			Options:      fromDiscordOptions(o.Options),
		}
		for _, ch := range o.Choices {
			if ch != nil {
				opt.Choices = append(opt.Choices, domain.Choice{Name: ch.Name, Value: ch.Value})
			}
		}
		out = append(out, opt)
	}
	return out
}

func fromDiscordCommands(cmds []*discordgo.ApplicationCommand) []domain.Command {
	out := make([]domain.Command, 0, len(cmds))
	for _, c := range cmds {
		if c != nil {
			out = append(out, fromDiscordCommand(c))
		}
	}
	return out
}

// commandPatchBody is the PATCH payload. Unlike discordgo.ApplicationCommand
// every field is omitted when unset, so untouched attributes keep their value.
type commandPatchBody struct {
	Name                     *string                                 `json:"name,omitempty"`
	Description              *string                                 `json:"description,omitempty"`
	DefaultMemberPermissions *int64                                  `json:"default_member_permissions,string,omitempty"`
	IntegrationTypes         *[]discordgo.ApplicationIntegrationType `json:"integration_types,omitempty"`
	Contexts                 *[]discordgo.InteractionContextType     `json:"contexts,omitempty"`
	NSFW                     *bool                                   `json:"nsfw,omitempty"`
	Options                  *[]*discordgo.ApplicationCommandOption  `json:"options,omitempty"`
}

func toPatchBody(p domain.CommandPatch) commandPatchBody {
	body := commandPatchBody{
		Name:                     p.Name,
		Description:              p.Description,
		DefaultMemberPermissions: p.DefaultMemberPermissions,
		NSFW:                     p.NSFW,
	}
	if p.IntegrationTypes != nil {
		types := toIntegrationTypes(p.IntegrationTypes)
		body.IntegrationTypes = &types
	}
	if p.Contexts != nil {
		contexts := toContexts(p.Contexts)
		body.Contexts = &contexts
	}
	if p.Options != nil {
		opts := toDiscordOptions(p.Options)
		if opts == nil {
			opts = []*discordgo.ApplicationCommandOption{}
		}
		body.Options = &opts
	}
	return body
}
