package db

import (
	"context"
	"database/sql"
)

const Schema = `
CREATE TABLE IF NOT EXISTS responder_outcome (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    origin    TEXT NOT NULL,
    database_ TEXT NOT NULL,
    responder TEXT NOT NULL,
    success   INTEGER NOT NULL,
    message   TEXT NOT NULL,
    time      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS responder_outcome_origin ON responder_outcome (origin);
`

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const createOutcome = `
INSERT INTO responder_outcome (origin, database_, responder, success, message, time)
VALUES (?, ?, ?, ?, ?, ?)
`

type CreateOutcomeParams struct {
	Origin    string
	Database  string
	Responder string
	Success   bool
	Message   string
	Time      int64
}

func (q *Queries) CreateOutcome(ctx context.Context, arg CreateOutcomeParams) error {
	_, err := q.db.ExecContext(ctx, createOutcome,
		arg.Origin,
		arg.Database,
		arg.Responder,
		arg.Success,
		arg.Message,
		arg.Time,
	)
	return err
}

const getOutcomesByOrigin = `
SELECT origin, database_, responder, success, message, time
FROM responder_outcome
WHERE origin = ?
ORDER BY time ASC, id ASC
`

type OutcomeRow struct {
	Origin    string
	Database  string
	Responder string
	Success   bool
	Message   string
	Time      int64
}

func (q *Queries) GetOutcomesByOrigin(ctx context.Context, origin string) ([]OutcomeRow, error) {
	rows, err := q.db.QueryContext(ctx, getOutcomesByOrigin, origin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OutcomeRow
	for rows.Next() {
		var row OutcomeRow
		err := rows.Scan(
			&row.Origin,
			&row.Database,
			&row.Responder,
			&row.Success,
			&row.Message,
			&row.Time,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, row)
	}
	return items, rows.Err()
}
