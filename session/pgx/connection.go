package pgx

import (
	"context"
	"regexp"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/VladislavSG/signal/session"
	"github.com/VladislavSG/signal/session/result"
)

var insertReturningRe = regexp.MustCompile(`(?is)^\s*INSERT\s.*\sRETURNING\s`)

// IsInsertReturningQuery reports whether query is an INSERT whose RETURNING
// clause yields the generated key.
func IsInsertReturningQuery(query string) bool {
	return insertReturningRe.MatchString(query)
}

// executor interface for both *pgxpool.Conn and pgx.Tx
type executor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

// connection implements session.DbConnection and reports every query to the
// pool signals.
type connection struct {
	ctx       context.Context
	exec      executor
	sessionID uuid.UUID
	signals   *session.PoolSignals
}

func (c *connection) Exec(query string, args ...any) (session.Result, error) {
	if IsInsertReturningQuery(query) {
		return c.insert(query, args...)
	}

	var res session.Result
	err := c.signals.ObserveQuery(c.sessionID, query, args, func() error {
		tag, err := c.exec.Exec(c.ctx, query, args...)
		if err != nil {
			return err
		}
		res = result.NewResult(0, tag.RowsAffected())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *connection) insert(query string, args ...any) (session.Result, error) {
	var id int64
	err := c.signals.ObserveQuery(c.sessionID, query, args, func() error {
		return c.exec.QueryRow(c.ctx, query, args...).Scan(&id)
	})
	if err != nil {
		return nil, err
	}
	return result.NewResult(id, 0), nil
}

// Query reports the end of the query once the rows are exhausted or closed,
// since pgx defers most query errors until then.
func (c *connection) Query(query string, args ...any) (session.Rows, error) {
	finish, err := c.signals.StartQuery(c.sessionID, query, args)
	if err != nil {
		return nil, err
	}
	rows, err := c.exec.Query(c.ctx, query, args...)
	if err != nil {
		return nil, finish(err)
	}
	return &rowsAdapter{rows: rows, finish: finish}, nil
}

// QueryRow reports the end of the query when the row is scanned, since pgx
// defers errors until then.
func (c *connection) QueryRow(query string, args ...any) session.Row {
	finish, err := c.signals.StartQuery(c.sessionID, query, args)
	if err != nil {
		return &errorRow{err: err}
	}
	return &rowAdapter{
		row:    c.exec.QueryRow(c.ctx, query, args...),
		finish: finish,
	}
}
