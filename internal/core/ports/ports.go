package ports

import (
	"context"

	"lsdc2-commands/internal/core/domain"
)

// CommandAPI is the remote application-command registry.
type CommandAPI interface {
	ListCommands(ctx context.Context, scope domain.Scope) ([]domain.Command, error)
	CreateCommand(ctx context.Context, scope domain.Scope, cmd domain.Command) (domain.Command, error)
	UpdateCommand(ctx context.Context, scope domain.Scope, id string, patch domain.CommandPatch) (domain.Command, error)
	DeleteCommand(ctx context.Context, scope domain.Scope, id string) error
}

type AuditLog interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
	Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
	Close()
}

// NopAudit discards entries. Used when no database is configured.
type NopAudit struct{}

func (NopAudit) Record(context.Context, domain.AuditEntry) error { return nil }

func (NopAudit) Recent(context.Context, int) ([]domain.AuditEntry, error) { return nil, nil }

func (NopAudit) Close() {}
