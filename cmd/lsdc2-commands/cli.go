package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"lsdc2-commands/internal/catalog"
	"lsdc2-commands/internal/core/domain"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usageText = `Usage: lsdc2-commands <command> [flags]

Commands:
  list        list registered commands
  register    register the catalogue commands of a scope
  update      patch one command
  delete      delete one command by name or id
  delete-all  delete every command of a scope
  cleanup     delete every global command, then every command of DISCORD_GUILD_ID
  history     show the most recent audit entries

Run 'lsdc2-commands <command> -h' for the flags of a command.
`

type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// invocation is one parsed command line.
type invocation struct {
	command string
	guildID string
	only    []string
	name    string
	id      string
	limit   int

	sync        bool
	rename      *string
	description *string
	permissions *int64
	nsfw        *bool
}

func (inv *invocation) scope() domain.Scope {
	if inv.guildID == "" {
		return domain.Global()
	}
	return domain.Guild(inv.guildID)
}

func (inv *invocation) needsAudit() bool {
	return inv.command == "history"
}

func parseArgs(args []string, stderr io.Writer) (*invocation, error) {
	if len(args) == 0 {
		fmt.Fprint(stderr, usageText)
		return nil, usagef("no command given")
	}

	inv := &invocation{command: args[0]}
	fs := flag.NewFlagSet(inv.command, flag.ContinueOnError)
	fs.SetOutput(stderr)

	switch inv.command {
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stderr, usageText)
		return nil, flag.ErrHelp
	case "list", "delete-all":
		fs.StringVar(&inv.guildID, "guild", "", "guild id (default: global scope)")
	case "cleanup":
		fs.StringVar(&inv.guildID, "guild", "", "guild id to clean after the global scope (default: DISCORD_GUILD_ID)")
	case "register":
		fs.StringVar(&inv.guildID, "guild", "", "guild id (default: global scope)")
		fs.Func("only", "comma-separated catalogue command names (default: all)", func(v string) error {
			inv.only = splitList(v)
			return nil
		})
	case "delete":
		fs.StringVar(&inv.guildID, "guild", "", "guild id (default: global scope)")
		fs.StringVar(&inv.name, "name", "", "command name")
		fs.StringVar(&inv.id, "id", "", "command id")
	case "update":
		fs.StringVar(&inv.guildID, "guild", "", "guild id (default: global scope)")
		fs.StringVar(&inv.name, "name", "", "command name")
		fs.StringVar(&inv.id, "id", "", "command id")
		fs.BoolVar(&inv.sync, "sync", false, "patch the command to match its catalogue definition")
		fs.Func("rename", "new command name", func(v string) error {
			inv.rename = &v
			return nil
		})
		fs.Func("description", "new description", func(v string) error {
			inv.description = &v
			return nil
		})
		fs.Func("default-permissions", "default member permission bits (e.g. 8 or 0x20)", func(v string) error {
			bits, err := strconv.ParseInt(v, 0, 64)
			if err != nil || bits < 0 {
				return fmt.Errorf("invalid permission bits %q", v)
			}
			inv.permissions = &bits
			return nil
		})
		fs.Func("nsfw", "age-restrict the command (true/false)", func(v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid boolean %q", v)
			}
			inv.nsfw = &b
			return nil
		})
	case "history":
		fs.IntVar(&inv.limit, "limit", 20, "number of entries")
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", inv.command)
		fmt.Fprint(stderr, usageText)
		return nil, usagef("unknown command %q", inv.command)
	}

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, &usageError{msg: err.Error()}
	}
	if fs.NArg() > 0 {
		err := usagef("%s: unexpected arguments %v", inv.command, fs.Args())
		fmt.Fprintln(stderr, err)
		return nil, err
	}

	if err := inv.check(); err != nil {
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return nil, err
	}
	return inv, nil
}

func (inv *invocation) check() error {
	switch inv.command {
	case "delete":
		if (inv.name == "") == (inv.id == "") {
			return usagef("delete: exactly one of -name or -id is required")
		}
	case "update":
		if (inv.name == "") == (inv.id == "") {
			return usagef("update: exactly one of -name or -id is required")
		}
		if inv.sync && inv.name == "" {
			return usagef("update: -sync requires -name")
		}
		if !inv.sync && inv.explicitPatch().IsEmpty() {
			return usagef("update: nothing to change")
		}
	case "history":
		if inv.limit <= 0 {
			return usagef("history: -limit must be positive")
		}
	}
	return nil
}

func (inv *invocation) explicitPatch() domain.CommandPatch {
	return domain.CommandPatch{
		Name:                     inv.rename,
		Description:              inv.description,
		DefaultMemberPermissions: inv.permissions,
		NSFW:                     inv.nsfw,
	}
}

// buildPatch starts from the catalogue definition when -sync is set and lets
// explicit flags override it.
func (inv *invocation) buildPatch(scope domain.Scope) (domain.CommandPatch, error) {
	patch := inv.explicitPatch()
	if !inv.sync {
		return patch, nil
	}

	def, ok := catalog.Lookup(scope, inv.name)
	if !ok {
		return domain.CommandPatch{}, usagef("update: %q is not a %s catalogue command", inv.name, scope.Kind())
	}

	synced := domain.CommandPatch{
		Description:              &def.Description,
		DefaultMemberPermissions: def.DefaultMemberPermissions,
		IntegrationTypes:         def.IntegrationTypes,
		Contexts:                 def.Contexts,
		NSFW:                     &def.NSFW,
		Options:                  def.Options,
	}
	if patch.Name != nil {
		synced.Name = patch.Name
	}
	if patch.Description != nil {
		synced.Description = patch.Description
	}
	if patch.DefaultMemberPermissions != nil {
		synced.DefaultMemberPermissions = patch.DefaultMemberPermissions
	}
	if patch.NSFW != nil {
		synced.NSFW = patch.NSFW
	}
	return synced, nil
}

// runCommand executes inv and maps the outcome to a process exit status.
func runCommand(ctx context.Context, reg Registrar, inv *invocation, defaultGuild string, out io.Writer) int {
	err := execute(ctx, reg, inv, defaultGuild, out)
	if err == nil {
		return exitOK
	}

	var ue *usageError
	if errors.As(err, &ue) {
		slog.Error("Invalid command line", "command", inv.command, "error", err)
		return exitUsage
	}

	slog.Error("Command failed", "command", inv.command, "kind", domain.KindOf(err), "error", err)
	return exitError
}

func execute(ctx context.Context, reg Registrar, inv *invocation, defaultGuild string, out io.Writer) error {
	scope := inv.scope()

	switch inv.command {
	case "list":
		cmds, err := reg.ListCommands(ctx, scope)
		if err != nil {
			return err
		}
		return writeJSON(out, newCommandViews(cmds))

	case "register":
		cmds, unknown := catalog.Select(scope, inv.only)
		if len(unknown) > 0 {
			return usagef("register: unknown %s commands: %s", scope.Kind(), strings.Join(unknown, ", "))
		}
		registered, result := reg.RegisterCommands(ctx, scope, cmds)
		if err := writeJSON(out, registerView{
			Scope:    scope.String(),
			Commands: newCommandViews(registered),
			Result:   newBulkView(scope, result),
		}); err != nil {
			return err
		}
		return result.Err()

	case "update":
		patch, err := inv.buildPatch(scope)
		if err != nil {
			return err
		}
		var updated domain.Command
		if inv.id != "" {
			updated, err = reg.UpdateCommand(ctx, scope, inv.id, patch)
		} else {
			updated, err = reg.UpdateCommandByName(ctx, scope, inv.name, patch)
		}
		if err != nil {
			return err
		}
		return writeJSON(out, newCommandView(updated))

	case "delete":
		deleted := deleteView{Scope: scope.String(), ID: inv.id}
		if inv.id != "" {
			if err := reg.DeleteCommand(ctx, scope, inv.id); err != nil {
				return err
			}
		} else {
			cmd, err := reg.DeleteCommandByName(ctx, scope, inv.name)
			if err != nil {
				return err
			}
			deleted.ID = cmd.ID
			deleted.Name = cmd.Name
		}
		deleted.Deleted = true
		return writeJSON(out, deleted)

	case "delete-all":
		result, err := reg.DeleteAllCommands(ctx, scope)
		if err != nil {
			return err
		}
		if err := writeJSON(out, newBulkView(scope, result)); err != nil {
			return err
		}
		return result.Err()

	case "cleanup":
		scopes := []domain.Scope{domain.Global()}
		guildID := inv.guildID
		if guildID == "" {
			guildID = defaultGuild
		}
		if guildID != "" {
			scopes = append(scopes, domain.Guild(guildID))
		}

		results, err := reg.Cleanup(ctx, scopes...)
		views := make([]bulkView, 0, len(results))
		for _, r := range results {
			v := newBulkView(r.Scope, r.Result)
			if r.Err != nil {
				v.Error = r.Err.Error()
			}
			views = append(views, v)
		}
		if werr := writeJSON(out, views); werr != nil {
			return werr
		}
		return err

	case "history":
		entries, err := reg.History(ctx, inv.limit)
		if err != nil {
			return err
		}
		return writeJSON(out, newAuditViews(entries))
	}

	return usagef("unknown command %q", inv.command)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
