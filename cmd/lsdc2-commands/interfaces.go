package main

import (
	"context"

	"lsdc2-commands/internal/core/domain"
	"lsdc2-commands/internal/core/services/registration"
)

// Registrar is the subset of registration.Service the subcommands drive.
type Registrar interface {
	ListCommands(ctx context.Context, scope domain.Scope) ([]domain.Command, error)
	RegisterCommands(ctx context.Context, scope domain.Scope, cmds []domain.Command) ([]domain.Command, domain.BulkResult)
	UpdateCommand(ctx context.Context, scope domain.Scope, id string, patch domain.CommandPatch) (domain.Command, error)
	UpdateCommandByName(ctx context.Context, scope domain.Scope, name string, patch domain.CommandPatch) (domain.Command, error)
	DeleteCommand(ctx context.Context, scope domain.Scope, id string) error
	DeleteCommandByName(ctx context.Context, scope domain.Scope, name string) (domain.Command, error)
	DeleteAllCommands(ctx context.Context, scope domain.Scope) (domain.BulkResult, error)
	Cleanup(ctx context.Context, scopes ...domain.Scope) ([]registration.ScopeResult, error)
	History(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}
