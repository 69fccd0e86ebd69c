package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type CommandAudit struct {
	RunID       string
	Action      string
	Scope       string
	CommandID   string
	CommandName string
	Outcome     string
	Error       string
	CreatedAt   pgtype.Timestamptz
}

const createAuditTable = `-- name: CreateAuditTable :exec
CREATE TABLE IF NOT EXISTS command_audit (
    id           BIGSERIAL PRIMARY KEY,
    run_id       TEXT        NOT NULL,
    action       TEXT        NOT NULL,
    scope        TEXT        NOT NULL,
    command_id   TEXT        NOT NULL DEFAULT '',
    command_name TEXT        NOT NULL DEFAULT '',
    outcome      TEXT        NOT NULL,
    error        TEXT        NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)
`

func (q *Queries) CreateAuditTable(ctx context.Context) error {
	_, err := q.db.Exec(ctx, createAuditTable)
	return err
}

const insertAudit = `-- name: InsertAudit :exec
INSERT INTO command_audit (run_id, action, scope, command_id, command_name, outcome, error, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

type InsertAuditParams struct {
	RunID       string
	Action      string
	Scope       string
	CommandID   string
	CommandName string
	Outcome     string
	Error       string
	CreatedAt   pgtype.Timestamptz
}

func (q *Queries) InsertAudit(ctx context.Context, arg InsertAuditParams) error {
	_, err := q.db.Exec(ctx, insertAudit,
		arg.RunID,
		arg.Action,
		arg.Scope,
		arg.CommandID,
		arg.CommandName,
		arg.Outcome,
		arg.Error,
		arg.CreatedAt,
	)
	return err
}

const recentAudit = `-- name: RecentAudit :many
SELECT run_id, action, scope, command_id, command_name, outcome, error, created_at
FROM command_audit
ORDER BY created_at DESC, id DESC
LIMIT $1
`

func (q *Queries) RecentAudit(ctx context.Context, limit int32) ([]CommandAudit, error) {
	rows, err := q.db.Query(ctx, recentAudit, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CommandAudit
	for rows.Next() {
		var i CommandAudit
		if err := rows.Scan(
			&i.RunID,
			&i.Action,
			&i.Scope,
			&i.CommandID,
			&i.CommandName,
			&i.Outcome,
			&i.Error,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
