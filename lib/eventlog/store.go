// Package eventlog keeps a local journal of pipeline runs, one row per
// responder outcome. The store and the feed are remote and append-only
// from this program's perspective; the journal is the only local
// receipt of what was attempted and how it went.
package eventlog

import (
	"context"
	"database/sql"
	"time"

	"consumelog-backend/lib/eventlog/db"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

func (s Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, db.Schema)
	return err
}

type Outcome struct {
	Origin    string
	Database  string
	Responder string
	Success   bool
	Message   string
	Time      time.Time
}

// Push journals a run's outcomes in one transaction.
func (s Store) Push(ctx context.Context, outcomes []Outcome) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	for _, o := range outcomes {
		err := txqry.CreateOutcome(ctx, db.CreateOutcomeParams{
			Origin:    o.Origin,
			Database:  o.Database,
			Responder: o.Responder,
			Success:   o.Success,
			Message:   o.Message,
			Time:      o.Time.Unix(),
		})
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Pull returns everything journaled for an origin, oldest first.
func (s Store) Pull(ctx context.Context, origin string) ([]Outcome, error) {
	rows, err := s.qry.GetOutcomesByOrigin(ctx, origin)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(rows))
	for i, r := range rows {
		outcomes[i] = Outcome{
			Origin:    r.Origin,
			Database:  r.Database,
			Responder: r.Responder,
			Success:   r.Success,
			Message:   r.Message,
			Time:      time.Unix(r.Time, 0),
		}
	}
	return outcomes, nil
}
