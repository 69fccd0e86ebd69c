package domain

// Scope selects the command namespace: the whole application or a single guild.
type Scope struct {
	guildID string
}

func Global() Scope {
	return Scope{}
}

func Guild(id string) Scope {
	return Scope{guildID: id}
}

func (s Scope) IsGlobal() bool {
	return s.guildID == ""
}

// GuildID is empty for the global scope.
func (s Scope) GuildID() string {
	return s.guildID
}

// Kind is "global" or "guild", used as a low-cardinality label.
func (s Scope) Kind() string {
	if s.IsGlobal() {
		return "global"
	}
	return "guild"
}

func (s Scope) String() string {
	if s.IsGlobal() {
		return "global"
	}
	return "guild:" + s.guildID
}
