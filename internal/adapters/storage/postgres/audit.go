package postgres

import (
	"context"
	"fmt"

	"lsdc2-commands/internal/adapters/storage/postgres/db"
	"lsdc2-commands/internal/core/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 1000
)

// AuditStore journals command mutations in the command_audit table.
type AuditStore struct {
	pool *pgxpool.Pool
	q    *db.Queries
}

func NewAuditStore(ctx context.Context, connString string) (*AuditStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &AuditStore{
		pool: pool,
		q:    db.New(pool),
	}

	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

func (s *AuditStore) EnsureSchema(ctx context.Context) error {
	if err := s.q.CreateAuditTable(ctx); err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

func (s *AuditStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *AuditStore) Record(ctx context.Context, entry domain.AuditEntry) error {
	err := s.q.InsertAudit(ctx, db.InsertAuditParams{
		RunID:       entry.RunID,
		Action:      string(entry.Action),
		Scope:       entry.Scope,
		CommandID:   entry.CommandID,
		CommandName: entry.CommandName,
		Outcome:     entry.Outcome,
		Error:       entry.Error,
		CreatedAt:   pgtype.Timestamptz{Time: entry.At, Valid: !entry.At.IsZero()},
	})
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries first. A non-positive limit selects the
// default page size.
func (s *AuditStore) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := s.q.RecentAudit(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("get recent audit entries: %w", err)
	}

	result := make([]domain.AuditEntry, 0, len(rows))
	for _, row := range rows {
		result = append(result, domain.AuditEntry{
			RunID:       row.RunID,
			Action:      domain.AuditAction(row.Action),
			Scope:       row.Scope,
			CommandID:   row.CommandID,
			CommandName: row.CommandName,
			Outcome:     row.Outcome,
			Error:       row.Error,
			At:          row.CreatedAt.Time,
		})
	}
	return result, nil
}
