package catalog

import (
	"lsdc2-commands/internal/core/domain"
)

// Global command names.
const (
	WelcomeGuild       = "welcome-guild"
	GoodbyeGuild       = "goodbye-guild"
	RegisterGame       = "register-game"
	RegisterEngineTier = "register-engine-tier"
)

// Guild command names.
const (
	Spinup   = "spinup"
	Destroy  = "destroy"
	Invite   = "invite"
	Kick     = "kick"
	Start    = "start"
	Stop     = "stop"
	Status   = "status"
	Download = "download"
	Upload   = "upload"
)

func guildInstall() []domain.IntegrationType {
	return []domain.IntegrationType{domain.IntegrationGuildInstall}
}

// GlobalCommands are registered once for the application. They bootstrap
// and administer the launcher.
func GlobalCommands() []domain.Command {
	return []domain.Command{
		{
			Type:                     domain.CommandTypeChatInput,
			Name:                     WelcomeGuild,
			Description:              "Deploy LSDC2 bot commands, channels and roles in your guild",
			IntegrationTypes:         guildInstall(),
			Contexts:                 []domain.ContextType{domain.ContextGuild},
			DefaultMemberPermissions: domain.Permissions(domain.PermissionAdministrator),
		},
		{
			Type:                     domain.CommandTypeChatInput,
			Name:                     GoodbyeGuild,
			Description:              "Remove everything related to LSDC2 bot from your guild",
			IntegrationTypes:         guildInstall(),
			Contexts:                 []domain.ContextType{domain.ContextGuild},
			DefaultMemberPermissions: domain.Permissions(domain.PermissionAdministrator),
		},
		{
			Type:                     domain.CommandTypeChatInput,
			Name:                     RegisterGame,
			Description:              "Add a new game in the LSDC2 launcher",
			IntegrationTypes:         guildInstall(),
			Contexts:                 []domain.ContextType{domain.ContextBotDM},
			DefaultMemberPermissions: domain.Permissions(domain.PermissionAdministrator),
			Options: []domain.Option{
				stringOption("spec-url", "Url to LSDC2-compatible game description", false, false),
				boolOption("overwrite", "If true, overwrite any existing spec"),
			},
		},
		{
			Type:                     domain.CommandTypeChatInput,
			Name:                     RegisterEngineTier,
			Description:              "Add/update a engine tier in the LSDC2 launcher",
			IntegrationTypes:         guildInstall(),
			Contexts:                 []domain.ContextType{domain.ContextBotDM},
			DefaultMemberPermissions: domain.Permissions(domain.PermissionAdministrator),
		},
	}
}

// GuildCommands are added to a guild when it welcomes the bot.
func GuildCommands() []domain.Command {
	return []domain.Command{
		{
			Type:                     domain.CommandTypeChatInput,
			Name:                     Spinup,
			Description:              "Start a new server instance",
			DefaultMemberPermissions: domain.Permissions(domain.PermissionManageServer),
			Options: []domain.Option{
				stringOption("game-type", "Game type to start", true, true),
			},
		},
		{
			Type:        domain.CommandTypeChatInput,
			Name:        Destroy,
			Description: "Destroy a server",
			Options: []domain.Option{
				stringOption("server-name", "The name of the server to destroy", true, false),
			},
		},
		{
			Type:        domain.CommandTypeChatInput,
			Name:        Invite,
			Description: "Invite a user to LSDC2 Role and/or server",
			Options: []domain.Option{
				userOption("member", "The member invited"),
			},
		},
		{
			Type:        domain.CommandTypeChatInput,
			Name:        Kick,
			Description: "Kick a user from an LSDC2 Role and/or server",
			Options: []domain.Option{
				userOption("member", "The member removed"),
			},
		},
		{
			Type:        domain.CommandTypeChatInput,
			Name:        Start,
			Description: "Start a server instance (run in instance channel)",
		},
		{
			Type:        domain.CommandTypeChatInput,
			Name:        Stop,
			Description: "Stop a running server instance (run in instance channel)",
		},
		{
			Type:        domain.CommandTypeChatInput,
			Name:        Status,
			Description: "Give the status of a server instance (run in instance channel)",
		},
		{
			Type:        domain.CommandTypeChatInput,
			Name:        Download,
			Description: "Retrieve the savegame of a server instance (run in instance channel)",
		},
		{
			Type:        domain.CommandTypeChatInput,
			Name:        Upload,
			Description: "Upload a savegame to a server instance (run in instance channel)",
		},
	}
}

// ForScope returns the catalogue registered in scope.
func ForScope(scope domain.Scope) []domain.Command {
	if scope.IsGlobal() {
		return GlobalCommands()
	}
	return GuildCommands()
}

func Lookup(scope domain.Scope, name string) (domain.Command, bool) {
	return domain.FindByName(ForScope(scope), domain.NormalizeName(name))
}

// Select returns the catalogue entries of scope named in names, in catalogue
// order. Unknown names are returned separately.
func Select(scope domain.Scope, names []string) ([]domain.Command, []string) {
	all := ForScope(scope)
	if len(names) == 0 {
		return all, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[domain.NormalizeName(n)] = true
	}

	var selected []domain.Command
	for _, cmd := range all {
		if wanted[cmd.Name] {
			selected = append(selected, cmd)
			delete(wanted, cmd.Name)
		}
	}

	var unknown []string
	for _, n := range names {
		if wanted[domain.NormalizeName(n)] {
			unknown = append(unknown, n)
			delete(wanted, domain.NormalizeName(n))
		}
	}
	return selected, unknown
}

func stringOption(name, description string, required, autocomplete bool) domain.Option {
	return domain.Option{
		Type:         domain.OptionString,
		Name:         name,
		Description:  description,
		Required:     required,
		Autocomplete: autocomplete,
	}
}

func boolOption(name, description string) domain.Option {
	return domain.Option{
		Type:        domain.OptionBoolean,
		Name:        name,
		Description: description,
	}
}

func userOption(name, description string) domain.Option {
	return domain.Option{
		Type:        domain.OptionUser,
		Name:        name,
		Description: description,
		Required:    true,
	}
}
