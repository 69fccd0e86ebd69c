package domain

// CommandType is the kind of application command.
type CommandType int

const (
	CommandTypeChatInput CommandType = 1
	CommandTypeUser      CommandType = 2
	CommandTypeMessage   CommandType = 3
)

func (t CommandType) String() string {
	switch t {
	case CommandTypeChatInput:
		return "chat-input"
	case CommandTypeUser:
		return "user-context"
	case CommandTypeMessage:
		return "message-context"
	default:
		return "unknown"
	}
}

// OptionType is the value type of a command option.
type OptionType int

const (
	OptionSubCommand      OptionType = 1
	OptionSubCommandGroup OptionType = 2
	OptionString          OptionType = 3
	OptionInteger         OptionType = 4
	OptionBoolean         OptionType = 5
	OptionUser            OptionType = 6
	OptionChannel         OptionType = 7
	OptionRole            OptionType = 8
	OptionMentionable     OptionType = 9
	OptionNumber          OptionType = 10
	OptionAttachment      OptionType = 11
)

// IntegrationType is where an application can be installed.
type IntegrationType int

const (
	IntegrationGuildInstall IntegrationType = 0
	IntegrationUserInstall  IntegrationType = 1
)

// ContextType is where a command can be invoked from.
type ContextType int

const (
	ContextGuild          ContextType = 0
	ContextBotDM          ContextType = 1
	ContextPrivateChannel ContextType = 2
)

// Permission bits used for default_member_permissions.
const (
	PermissionCreateInvite           int64 = 0x0000000000000001
	PermissionAdministrator          int64 = 0x0000000000000008
	PermissionManageServer           int64 = 0x0000000000000020
	PermissionViewChannel            int64 = 0x0000000000000400
	PermissionReadHistory            int64 = 0x0000000000010000
	PermissionUseApplicationCommands int64 = 0x0000000080000000
)

// Permissions ORs the given bits into a bitmask suitable for DefaultMemberPermissions.
func Permissions(bits ...int64) *int64 {
	var mask int64
	for _, b := range bits {
		mask |= b
	}
	return &mask
}
