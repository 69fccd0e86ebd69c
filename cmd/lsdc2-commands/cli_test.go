package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"strings"
	"testing"

	"lsdc2-commands/internal/catalog"
	"lsdc2-commands/internal/core/domain"
	"lsdc2-commands/internal/core/services/registration"
)

type mockRegistrar struct {
	listFunc         func(ctx context.Context, scope domain.Scope) ([]domain.Command, error)
	registerFunc     func(ctx context.Context, scope domain.Scope, cmds []domain.Command) ([]domain.Command, domain.BulkResult)
	updateFunc       func(ctx context.Context, scope domain.Scope, id string, patch domain.CommandPatch) (domain.Command, error)
	updateByNameFunc func(ctx context.Context, scope domain.Scope, name string, patch domain.CommandPatch) (domain.Command, error)
	deleteFunc       func(ctx context.Context, scope domain.Scope, id string) error
	deleteByNameFunc func(ctx context.Context, scope domain.Scope, name string) (domain.Command, error)
	deleteAllFunc    func(ctx context.Context, scope domain.Scope) (domain.BulkResult, error)
	cleanupFunc      func(ctx context.Context, scopes ...domain.Scope) ([]registration.ScopeResult, error)
	historyFunc      func(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

func (m *mockRegistrar) ListCommands(ctx context.Context, scope domain.Scope) ([]domain.Command, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, scope)
	}
	return nil, nil
}

func (m *mockRegistrar) RegisterCommands(ctx context.Context, scope domain.Scope, cmds []domain.Command) ([]domain.Command, domain.BulkResult) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, scope, cmds)
	}
	return nil, domain.BulkResult{}
}

func (m *mockRegistrar) UpdateCommand(ctx context.Context, scope domain.Scope, id string, patch domain.CommandPatch) (domain.Command, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, scope, id, patch)
	}
	return domain.Command{}, nil
}

func (m *mockRegistrar) UpdateCommandByName(ctx context.Context, scope domain.Scope, name string, patch domain.CommandPatch) (domain.Command, error) {
	if m.updateByNameFunc != nil {
		return m.updateByNameFunc(ctx, scope, name, patch)
	}
	return domain.Command{}, nil
}

func (m *mockRegistrar) DeleteCommand(ctx context.Context, scope domain.Scope, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, scope, id)
	}
	return nil
}

func (m *mockRegistrar) DeleteCommandByName(ctx context.Context, scope domain.Scope, name string) (domain.Command, error) {
	if m.deleteByNameFunc != nil {
		return m.deleteByNameFunc(ctx, scope, name)
	}
	return domain.Command{}, nil
}

func (m *mockRegistrar) DeleteAllCommands(ctx context.Context, scope domain.Scope) (domain.BulkResult, error) {
	if m.deleteAllFunc != nil {
		return m.deleteAllFunc(ctx, scope)
	}
	return domain.BulkResult{}, nil
}

func (m *mockRegistrar) Cleanup(ctx context.Context, scopes ...domain.Scope) ([]registration.ScopeResult, error) {
	if m.cleanupFunc != nil {
		return m.cleanupFunc(ctx, scopes...)
	}
	return nil, nil
}

func (m *mockRegistrar) History(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if m.historyFunc != nil {
		return m.historyFunc(ctx, limit)
	}
	return nil, nil
}

func mustParse(t *testing.T, args ...string) *invocation {
	t.Helper()
	inv, err := parseArgs(args, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs(%v) failed: %v", args, err)
	}
	return inv
}

func TestParseArgs_Valid(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, inv *invocation)
	}{
		{
			name: "list defaults to global",
			args: []string{"list"},
			check: func(t *testing.T, inv *invocation) {
				if !inv.scope().IsGlobal() {
					t.Errorf("Expected global scope, got %s", inv.scope())
				}
			},
		},
		{
			name: "list guild",
			args: []string{"list", "-guild", "123"},
			check: func(t *testing.T, inv *invocation) {
				if inv.scope() != domain.Guild("123") {
					t.Errorf("Expected guild:123, got %s", inv.scope())
				}
			},
		},
		{
			name: "register only",
			args: []string{"register", "-guild", "123", "-only", "spinup, start,,stop"},
			check: func(t *testing.T, inv *invocation) {
				if strings.Join(inv.only, "|") != "spinup|start|stop" {
					t.Errorf("Unexpected only list: %v", inv.only)
				}
			},
		},
		{
			name: "update by name",
			args: []string{"update", "-name", "spinup", "-description", "Spin up a server", "-default-permissions", "0x20", "-nsfw", "false"},
			check: func(t *testing.T, inv *invocation) {
				if inv.description == nil || *inv.description != "Spin up a server" {
					t.Errorf("Unexpected description: %v", inv.description)
				}
				if inv.permissions == nil || *inv.permissions != domain.PermissionManageServer {
					t.Errorf("Unexpected permissions: %v", inv.permissions)
				}
				if inv.nsfw == nil || *inv.nsfw {
					t.Errorf("Unexpected nsfw: %v", inv.nsfw)
				}
				if inv.rename != nil {
					t.Errorf("Expected no rename, got %q", *inv.rename)
				}
			},
		},
		{
			name: "update sync",
			args: []string{"update", "-guild", "123", "-name", "spinup", "-sync"},
			check: func(t *testing.T, inv *invocation) {
				if !inv.sync {
					t.Error("Expected sync to be set")
				}
			},
		},
		{
			name: "delete by id",
			args: []string{"delete", "-id", "42"},
			check: func(t *testing.T, inv *invocation) {
				if inv.id != "42" || inv.name != "" {
					t.Errorf("Unexpected target: id=%q name=%q", inv.id, inv.name)
				}
			},
		},
		{
			name: "history default limit",
			args: []string{"history"},
			check: func(t *testing.T, inv *invocation) {
				if inv.limit != 20 {
					t.Errorf("Expected limit 20, got %d", inv.limit)
				}
				if !inv.needsAudit() {
					t.Error("Expected history to need the audit journal")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, mustParse(t, tt.args...))
		})
	}
}

func TestParseArgs_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"sync-all"}},
		{"unknown flag", []string{"list", "-force"}},
		{"extra arguments", []string{"list", "spinup"}},
		{"delete without target", []string{"delete"}},
		{"delete with both targets", []string{"delete", "-name", "spinup", "-id", "42"}},
		{"update without target", []string{"update", "-description", "x"}},
		{"update nothing to change", []string{"update", "-name", "spinup"}},
		{"update sync by id", []string{"update", "-id", "42", "-sync"}},
		{"update bad permissions", []string{"update", "-name", "spinup", "-default-permissions", "admin"}},
		{"update negative permissions", []string{"update", "-name", "spinup", "-default-permissions", "-1"}},
		{"update bad nsfw", []string{"update", "-name", "spinup", "-nsfw", "maybe"}},
		{"history zero limit", []string{"history", "-limit", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			_, err := parseArgs(tt.args, &stderr)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			var ue *usageError
			if !errors.As(err, &ue) {
				t.Errorf("Expected usage error, got %T: %v", err, err)
			}
			if stderr.Len() == 0 {
				t.Error("Expected usage output on stderr")
			}
		})
	}
}

func TestParseArgs_Help(t *testing.T) {
	for _, args := range [][]string{{"help"}, {"--help"}, {"list", "-h"}} {
		var stderr bytes.Buffer
		_, err := parseArgs(args, &stderr)
		if !errors.Is(err, flag.ErrHelp) {
			t.Errorf("%v: expected flag.ErrHelp, got %v", args, err)
		}
	}
}

func TestBuildPatch(t *testing.T) {
	t.Run("Explicit flags only", func(t *testing.T) {
		inv := mustParse(t, "update", "-name", "spinup", "-rename", "launch")
		patch, err := inv.buildPatch(domain.Guild("123"))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if patch.Name == nil || *patch.Name != "launch" {
			t.Errorf("Unexpected name: %v", patch.Name)
		}
		if patch.Description != nil || patch.Options != nil {
			t.Error("Expected untouched fields to stay nil")
		}
	})

	t.Run("Sync from catalogue", func(t *testing.T) {
		inv := mustParse(t, "update", "-guild", "123", "-name", "SpinUp", "-sync", "-description", "Override")
		patch, err := inv.buildPatch(domain.Guild("123"))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		def, _ := catalog.Lookup(domain.Guild("123"), catalog.Spinup)
		if len(patch.Options) != len(def.Options) {
			t.Errorf("Expected %d options from the catalogue, got %d", len(def.Options), len(patch.Options))
		}
		if patch.Description == nil || *patch.Description != "Override" {
			t.Errorf("Expected explicit description to win, got %v", patch.Description)
		}
		if patch.DefaultMemberPermissions == nil || *patch.DefaultMemberPermissions != *def.DefaultMemberPermissions {
			t.Errorf("Unexpected permissions: %v", patch.DefaultMemberPermissions)
		}
		if patch.Name != nil {
			t.Errorf("Expected name untouched, got %q", *patch.Name)
		}
	})

	t.Run("Sync unknown command", func(t *testing.T) {
		inv := mustParse(t, "update", "-name", "spinup", "-sync")
		_, err := inv.buildPatch(domain.Global())
		var ue *usageError
		if !errors.As(err, &ue) {
			t.Fatalf("Expected usage error for a guild command in the global scope, got %v", err)
		}
	})
}

func TestRunCommand_List(t *testing.T) {
	perms := domain.PermissionAdministrator
	reg := &mockRegistrar{
		listFunc: func(ctx context.Context, scope domain.Scope) ([]domain.Command, error) {
			if scope != domain.Guild("123") {
				t.Errorf("Unexpected scope %s", scope)
			}
			return []domain.Command{{
				ID:                       "7",
				Name:                     "spinup",
				Type:                     domain.CommandTypeChatInput,
				Description:              "Spin up a game server",
				DefaultMemberPermissions: &perms,
				Options: []domain.Option{
					{Type: domain.OptionString, Name: "game-type", Description: "Game type", Required: true},
				},
			}}, nil
		},
	}

	var out bytes.Buffer
	code := runCommand(context.Background(), reg, mustParse(t, "list", "-guild", "123"), "", &out)
	if code != exitOK {
		t.Fatalf("Expected exit %d, got %d", exitOK, code)
	}

	var got []map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, out.String())
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 command, got %d", len(got))
	}
	if got[0]["id"] != "7" || got[0]["name"] != "spinup" || got[0]["type"] != "chat-input" {
		t.Errorf("Unexpected command: %v", got[0])
	}
	if got[0]["default_member_permissions"] != "8" {
		t.Errorf("Expected permissions as a decimal string, got %v", got[0]["default_member_permissions"])
	}
	opts, _ := got[0]["options"].([]any)
	if len(opts) != 1 || opts[0].(map[string]any)["required"] != true {
		t.Errorf("Unexpected options: %v", got[0]["options"])
	}
}

func TestRunCommand_ListEmptyPrintsArray(t *testing.T) {
	var out bytes.Buffer
	code := runCommand(context.Background(), &mockRegistrar{}, mustParse(t, "list"), "", &out)
	if code != exitOK {
		t.Fatalf("Expected exit %d, got %d", exitOK, code)
	}
	if strings.TrimSpace(out.String()) != "[]" {
		t.Errorf("Expected [], got %q", out.String())
	}
}

func TestRunCommand_ListError(t *testing.T) {
	reg := &mockRegistrar{
		listFunc: func(ctx context.Context, scope domain.Scope) ([]domain.Command, error) {
			return nil, &domain.APIError{Kind: domain.ErrAuth, Status: 401}
		},
	}

	var out bytes.Buffer
	code := runCommand(context.Background(), reg, mustParse(t, "list"), "", &out)
	if code != exitError {
		t.Errorf("Expected exit %d, got %d", exitError, code)
	}
	if out.Len() != 0 {
		t.Errorf("Expected no output on failure, got %q", out.String())
	}
}

func TestRunCommand_Register(t *testing.T) {
	t.Run("Selected commands", func(t *testing.T) {
		var gotNames []string
		reg := &mockRegistrar{
			registerFunc: func(ctx context.Context, scope domain.Scope, cmds []domain.Command) ([]domain.Command, domain.BulkResult) {
				var result domain.BulkResult
				for i, c := range cmds {
					gotNames = append(gotNames, c.Name)
					c.ID = string(rune('1' + i))
					result.RecordSuccess()
					cmds[i] = c
				}
				return cmds, result
			},
		}

		var out bytes.Buffer
		code := runCommand(context.Background(), reg, mustParse(t, "register", "-guild", "123", "-only", "stop,spinup"), "", &out)
		if code != exitOK {
			t.Fatalf("Expected exit %d, got %d", exitOK, code)
		}
		if strings.Join(gotNames, ",") != "spinup,stop" {
			t.Errorf("Expected catalogue order, got %v", gotNames)
		}

		var got registerView
		if err := json.Unmarshal(out.Bytes(), &got); err != nil {
			t.Fatalf("Output is not JSON: %v", err)
		}
		if got.Scope != "guild:123" || got.Result.Succeeded != 2 || len(got.Commands) != 2 {
			t.Errorf("Unexpected output: %+v", got)
		}
	})

	t.Run("Unknown name is a usage error", func(t *testing.T) {
		called := false
		reg := &mockRegistrar{
			registerFunc: func(ctx context.Context, scope domain.Scope, cmds []domain.Command) ([]domain.Command, domain.BulkResult) {
				called = true
				return nil, domain.BulkResult{}
			},
		}

		code := runCommand(context.Background(), reg, mustParse(t, "register", "-only", "spinup"), "", io.Discard)
		if code != exitUsage {
			t.Errorf("Expected exit %d, got %d", exitUsage, code)
		}
		if called {
			t.Error("Expected no registration for an unknown catalogue name")
		}
	})

	t.Run("Partial failure exits non-zero", func(t *testing.T) {
		reg := &mockRegistrar{
			registerFunc: func(ctx context.Context, scope domain.Scope, cmds []domain.Command) ([]domain.Command, domain.BulkResult) {
				var result domain.BulkResult
				result.RecordSuccess()
				result.RecordFailure("", cmds[1].Name, domain.NewValidationError("bad"))
				return cmds[:1], result
			},
		}

		var out bytes.Buffer
		code := runCommand(context.Background(), reg, mustParse(t, "register"), "", &out)
		if code != exitError {
			t.Errorf("Expected exit %d, got %d", exitError, code)
		}

		var got registerView
		if err := json.Unmarshal(out.Bytes(), &got); err != nil {
			t.Fatalf("Output is not JSON: %v", err)
		}
		if got.Result.Failed != 1 || len(got.Result.Failures) != 1 || got.Result.Failures[0].Kind != "validation" {
			t.Errorf("Unexpected result: %+v", got.Result)
		}
	})
}

func TestRunCommand_Update(t *testing.T) {
	t.Run("By name", func(t *testing.T) {
		reg := &mockRegistrar{
			updateByNameFunc: func(ctx context.Context, scope domain.Scope, name string, patch domain.CommandPatch) (domain.Command, error) {
				if name != "spinup" || patch.Description == nil {
					t.Errorf("Unexpected update: %q %+v", name, patch)
				}
				return domain.Command{ID: "7", Name: name, Description: *patch.Description}, nil
			},
		}

		var out bytes.Buffer
		code := runCommand(context.Background(), reg, mustParse(t, "update", "-guild", "123", "-name", "spinup", "-description", "New"), "", &out)
		if code != exitOK {
			t.Fatalf("Expected exit %d, got %d", exitOK, code)
		}
		if !strings.Contains(out.String(), `"description": "New"`) {
			t.Errorf("Unexpected output: %s", out.String())
		}
	})

	t.Run("By id not found", func(t *testing.T) {
		reg := &mockRegistrar{
			updateFunc: func(ctx context.Context, scope domain.Scope, id string, patch domain.CommandPatch) (domain.Command, error) {
				return domain.Command{}, &domain.APIError{Kind: domain.ErrNotFound, Status: 404}
			},
		}

		code := runCommand(context.Background(), reg, mustParse(t, "update", "-id", "999", "-nsfw", "true"), "", io.Discard)
		if code != exitError {
			t.Errorf("Expected exit %d, got %d", exitError, code)
		}
	})
}

func TestRunCommand_Delete(t *testing.T) {
	t.Run("By id", func(t *testing.T) {
		var gotID string
		reg := &mockRegistrar{
			deleteFunc: func(ctx context.Context, scope domain.Scope, id string) error {
				gotID = id
				return nil
			},
		}

		var out bytes.Buffer
		if code := runCommand(context.Background(), reg, mustParse(t, "delete", "-id", "42"), "", &out); code != exitOK {
			t.Fatalf("Expected exit %d, got %d", exitOK, code)
		}
		if gotID != "42" {
			t.Errorf("Expected id 42, got %q", gotID)
		}

		var got deleteView
		if err := json.Unmarshal(out.Bytes(), &got); err != nil {
			t.Fatalf("Output is not JSON: %v", err)
		}
		if !got.Deleted || got.ID != "42" || got.Scope != "global" {
			t.Errorf("Unexpected output: %+v", got)
		}
	})

	t.Run("By name", func(t *testing.T) {
		reg := &mockRegistrar{
			deleteByNameFunc: func(ctx context.Context, scope domain.Scope, name string) (domain.Command, error) {
				return domain.Command{ID: "9", Name: name}, nil
			},
		}

		var out bytes.Buffer
		if code := runCommand(context.Background(), reg, mustParse(t, "delete", "-guild", "123", "-name", "kick"), "", &out); code != exitOK {
			t.Fatalf("Expected exit %d, got %d", exitOK, code)
		}

		var got deleteView
		if err := json.Unmarshal(out.Bytes(), &got); err != nil {
			t.Fatalf("Output is not JSON: %v", err)
		}
		if got.ID != "9" || got.Name != "kick" || got.Scope != "guild:123" {
			t.Errorf("Unexpected output: %+v", got)
		}
	})
}

func TestRunCommand_DeleteAll(t *testing.T) {
	t.Run("Partial failure", func(t *testing.T) {
		reg := &mockRegistrar{
			deleteAllFunc: func(ctx context.Context, scope domain.Scope) (domain.BulkResult, error) {
				var r domain.BulkResult
				r.RecordSuccess()
				r.RecordFailure("2", "stop", &domain.APIError{Kind: domain.ErrNotFound, Status: 404})
				r.RecordSuccess()
				return r, nil
			},
		}

		var out bytes.Buffer
		code := runCommand(context.Background(), reg, mustParse(t, "delete-all", "-guild", "123"), "", &out)
		if code != exitError {
			t.Errorf("Expected exit %d, got %d", exitError, code)
		}

		var got bulkView
		if err := json.Unmarshal(out.Bytes(), &got); err != nil {
			t.Fatalf("Output is not JSON: %v", err)
		}
		if got.Succeeded != 2 || got.Failed != 1 || got.Failures[0].Kind != "not_found" {
			t.Errorf("Unexpected result: %+v", got)
		}
	})

	t.Run("Empty scope", func(t *testing.T) {
		var out bytes.Buffer
		code := runCommand(context.Background(), &mockRegistrar{}, mustParse(t, "delete-all"), "", &out)
		if code != exitOK {
			t.Errorf("Expected exit %d, got %d", exitOK, code)
		}
		if !strings.Contains(out.String(), `"attempted": 0`) {
			t.Errorf("Unexpected output: %s", out.String())
		}
	})
}

func TestRunCommand_Cleanup(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		defaultGuild string
		wantScopes   []string
	}{
		{"Global only", []string{"cleanup"}, "", []string{"global"}},
		{"Configured guild", []string{"cleanup"}, "555", []string{"global", "guild:555"}},
		{"Flag overrides configured guild", []string{"cleanup", "-guild", "777"}, "555", []string{"global", "guild:777"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotScopes []string
			reg := &mockRegistrar{
				cleanupFunc: func(ctx context.Context, scopes ...domain.Scope) ([]registration.ScopeResult, error) {
					results := make([]registration.ScopeResult, 0, len(scopes))
					for _, s := range scopes {
						gotScopes = append(gotScopes, s.String())
						results = append(results, registration.ScopeResult{Scope: s})
					}
					return results, nil
				},
			}

			var out bytes.Buffer
			if code := runCommand(context.Background(), reg, mustParse(t, tt.args...), tt.defaultGuild, &out); code != exitOK {
				t.Fatalf("Expected exit %d, got %d", exitOK, code)
			}
			if strings.Join(gotScopes, ",") != strings.Join(tt.wantScopes, ",") {
				t.Errorf("Expected scopes %v, got %v", tt.wantScopes, gotScopes)
			}
		})
	}

	t.Run("List failure is reported per scope", func(t *testing.T) {
		listErr := &domain.APIError{Kind: domain.ErrUnavailable, Status: 503}
		reg := &mockRegistrar{
			cleanupFunc: func(ctx context.Context, scopes ...domain.Scope) ([]registration.ScopeResult, error) {
				return []registration.ScopeResult{
					{Scope: domain.Global(), Err: listErr},
					{Scope: domain.Guild("555")},
				}, errors.Join(listErr)
			},
		}

		var out bytes.Buffer
		code := runCommand(context.Background(), reg, mustParse(t, "cleanup"), "555", &out)
		if code != exitError {
			t.Errorf("Expected exit %d, got %d", exitError, code)
		}

		var got []bulkView
		if err := json.Unmarshal(out.Bytes(), &got); err != nil {
			t.Fatalf("Output is not JSON: %v", err)
		}
		if len(got) != 2 || got[0].Error == "" || got[1].Error != "" {
			t.Errorf("Unexpected output: %+v", got)
		}
	})
}

func TestRunCommand_History(t *testing.T) {
	var gotLimit int
	reg := &mockRegistrar{
		historyFunc: func(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
			gotLimit = limit
			return []domain.AuditEntry{{RunID: "r1", Action: domain.AuditCreate, Scope: "global", CommandName: "welcome-guild", Outcome: "ok"}}, nil
		},
	}

	var out bytes.Buffer
	if code := runCommand(context.Background(), reg, mustParse(t, "history", "-limit", "5"), "", &out); code != exitOK {
		t.Fatalf("Expected exit %d, got %d", exitOK, code)
	}
	if gotLimit != 5 {
		t.Errorf("Expected limit 5, got %d", gotLimit)
	}

	var got []auditView
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("Output is not JSON: %v", err)
	}
	if len(got) != 1 || got[0].Action != "create" || got[0].CommandName != "welcome-guild" {
		t.Errorf("Unexpected output: %+v", got)
	}
}
