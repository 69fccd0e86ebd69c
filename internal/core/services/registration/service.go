package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lsdc2-commands/internal/adapters/metrics"
	"lsdc2-commands/internal/core/domain"
	"lsdc2-commands/internal/core/ports"
)

type Dependencies struct {
	API   ports.CommandAPI
	Audit ports.AuditLog
	RunID string
}

// Service composes CommandAPI calls into the operations an operator runs,
// journalling every mutation.
type Service struct {
	api   ports.CommandAPI
	audit ports.AuditLog
	runID string
	now   func() time.Time
}

// ScopeResult is the outcome of a bulk operation on one scope.
type ScopeResult struct {
	Scope  domain.Scope
	Result domain.BulkResult
	Err    error
}

func NewService(deps Dependencies) *Service {
	audit := deps.Audit
	if audit == nil {
		audit = ports.NopAudit{}
	}
	return &Service{
		api:   deps.API,
		audit: audit,
		runID: deps.RunID,
		now:   time.Now,
	}
}

func (s *Service) ListCommands(ctx context.Context, scope domain.Scope) ([]domain.Command, error) {
	cmds, err := s.api.ListCommands(ctx, scope)
	if err != nil {
		slog.Error("Failed to list commands", "scope", scope.String(), "error", err)
		return nil, err
	}
	return cmds, nil
}

func (s *Service) CreateCommand(ctx context.Context, scope domain.Scope, cmd domain.Command) (domain.Command, error) {
	created, err := s.api.CreateCommand(ctx, scope, cmd)
	s.record(ctx, domain.AuditCreate, scope, created.ID, cmd.Name, err)
	if err != nil {
		slog.Error("Cannot create command", "scope", scope.String(), "name", cmd.Name, "error", err)
		return domain.Command{}, err
	}

	slog.Info("Registered command", "scope", scope.String(), "name", created.Name, "id", created.ID)
	return created, nil
}

func (s *Service) UpdateCommand(ctx context.Context, scope domain.Scope, id string, patch domain.CommandPatch) (domain.Command, error) {
	updated, err := s.api.UpdateCommand(ctx, scope, id, patch)
	name := updated.Name
	if name == "" && patch.Name != nil {
		name = *patch.Name
	}
	s.record(ctx, domain.AuditUpdate, scope, id, name, err)
	if err != nil {
		slog.Error("Cannot update command", "scope", scope.String(), "id", id, "error", err)
		return domain.Command{}, err
	}

	slog.Info("Updated command", "scope", scope.String(), "name", updated.Name, "id", id)
	return updated, nil
}

func (s *Service) DeleteCommand(ctx context.Context, scope domain.Scope, id string) error {
	return s.deleteOne(ctx, scope, id, "")
}

func (s *Service) deleteOne(ctx context.Context, scope domain.Scope, id, name string) error {
	err := s.api.DeleteCommand(ctx, scope, id)
	s.record(ctx, domain.AuditDelete, scope, id, name, err)
	if err != nil {
		slog.Error("Cannot delete command", "scope", scope.String(), "id", id, "name", name, "error", err)
		return err
	}

	slog.Info("Deleted command", "scope", scope.String(), "id", id, "name", name)
	return nil
}

// DeleteAllCommands deletes every command of scope in list order. Failed
// deletions are collected in the result; the returned error is set only when
// the listing fails or ctx ends.
func (s *Service) DeleteAllCommands(ctx context.Context, scope domain.Scope) (domain.BulkResult, error) {
	var result domain.BulkResult

	cmds, err := s.ListCommands(ctx, scope)
	if err != nil {
		return result, err
	}

	for _, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.deleteOne(ctx, scope, cmd.ID, cmd.Name); err != nil {
			result.RecordFailure(cmd.ID, cmd.Name, err)
			continue
		}
		result.RecordSuccess()
	}

	slog.Info("Deleted all commands",
		"scope", scope.String(),
		"attempted", result.Attempted,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	return result, nil
}

// FindCommand returns the command of scope with the given name.
func (s *Service) FindCommand(ctx context.Context, scope domain.Scope, name string) (domain.Command, error) {
	cmds, err := s.ListCommands(ctx, scope)
	if err != nil {
		return domain.Command{}, err
	}

	if cmd, ok := domain.FindByName(cmds, name); ok {
		return cmd, nil
	}
	if cmd, ok := domain.FindByName(cmds, domain.NormalizeName(name)); ok {
		return cmd, nil
	}
	return domain.Command{}, domain.NewNotFoundError("no %s command named %q", scope, name)
}

func (s *Service) UpdateCommandByName(ctx context.Context, scope domain.Scope, name string, patch domain.CommandPatch) (domain.Command, error) {
	cmd, err := s.FindCommand(ctx, scope, name)
	if err != nil {
		return domain.Command{}, err
	}

	patch = patch.NormalizedFor(cmd.Type)
	if err := patch.ValidateFor(cmd.Type); err != nil {
		s.record(ctx, domain.AuditUpdate, scope, cmd.ID, cmd.Name, err)
		slog.Error("Cannot update command", "scope", scope.String(), "id", cmd.ID, "name", cmd.Name, "error", err)
		return domain.Command{}, fmt.Errorf("update %s command %q: %w", scope, cmd.Name, err)
	}
	return s.UpdateCommand(ctx, scope, cmd.ID, patch)
}

func (s *Service) DeleteCommandByName(ctx context.Context, scope domain.Scope, name string) (domain.Command, error) {
	cmd, err := s.FindCommand(ctx, scope, name)
	if err != nil {
		return domain.Command{}, err
	}
	if err := s.deleteOne(ctx, scope, cmd.ID, cmd.Name); err != nil {
		return domain.Command{}, err
	}
	return cmd, nil
}

// RegisterCommands creates each command in order, continuing past failures.
// The returned slice holds the created commands only.
func (s *Service) RegisterCommands(ctx context.Context, scope domain.Scope, cmds []domain.Command) ([]domain.Command, domain.BulkResult) {
	var result domain.BulkResult
	registered := make([]domain.Command, 0, len(cmds))

	for _, cmd := range cmds {
		if ctx.Err() != nil {
			result.RecordFailure("", cmd.Name, ctx.Err())
			continue
		}
		created, err := s.CreateCommand(ctx, scope, cmd)
		if err != nil {
			result.RecordFailure("", cmd.Name, err)
			continue
		}
		registered = append(registered, created)
		result.RecordSuccess()
	}

	return registered, result
}

// Cleanup deletes every command of each scope in turn.
func (s *Service) Cleanup(ctx context.Context, scopes ...domain.Scope) ([]ScopeResult, error) {
	results := make([]ScopeResult, 0, len(scopes))
	var errs []error

	for _, scope := range scopes {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("cleanup %s: %w", scope, err))
			break
		}
		result, err := s.DeleteAllCommands(ctx, scope)
		results = append(results, ScopeResult{Scope: scope, Result: result, Err: err})
		if err != nil {
			errs = append(errs, fmt.Errorf("cleanup %s: %w", scope, err))
			continue
		}
		if err := result.Err(); err != nil {
			errs = append(errs, fmt.Errorf("cleanup %s: %w", scope, err))
		}
	}

	return results, errors.Join(errs...)
}

func (s *Service) History(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	return s.audit.Recent(ctx, limit)
}

func (s *Service) record(ctx context.Context, action domain.AuditAction, scope domain.Scope, id, name string, opErr error) {
	outcome := domain.KindOf(opErr)
	metrics.CommandOperations.WithLabelValues(string(action), outcome).Inc()

	entry := domain.AuditEntry{
		RunID:       s.runID,
		Action:      action,
		Scope:       scope.String(),
		CommandID:   id,
		CommandName: name,
		Outcome:     outcome,
		At:          s.now().UTC(),
	}
	if opErr != nil {
		entry.Error = opErr.Error()
	}

	if err := s.audit.Record(context.WithoutCancel(ctx), entry); err != nil {
		slog.Warn("Failed to record audit entry", "action", action, "scope", scope.String(), "id", id, "error", err)
	}
}
