package pgx

import (
	"github.com/jackc/pgx/v5"
)

// rowsAdapter adapts pgx.Rows to session.Rows
type rowsAdapter struct {
	rows   pgx.Rows
	finish func(error) error
	err    error
}

// done reports the outcome of the query the first time it is called.
func (r *rowsAdapter) done() {
	if r.finish == nil {
		return
	}
	finish := r.finish
	r.finish = nil
	r.err = finish(r.rows.Err())
}

func (r *rowsAdapter) Close() error {
	r.rows.Close()
	r.done()
	return r.err
}

func (r *rowsAdapter) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

func (r *rowsAdapter) Next() bool {
	if r.rows.Next() {
		return true
	}
	r.done()
	return false
}

func (r *rowsAdapter) Scan(dest ...any) error {
	return r.rows.Scan(dest...)
}

// rowAdapter adapts pgx.Row to session.Row
type rowAdapter struct {
	row    pgx.Row
	finish func(error) error
	err    error
}

func (r *rowAdapter) Err() error {
	return r.err
}

func (r *rowAdapter) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if r.finish != nil {
		err = r.finish(err)
		r.finish = nil
	}
	if r.err == nil {
		r.err = err
	}
	return err
}

type errorRow struct {
	err error
}

func (r *errorRow) Err() error {
	return r.err
}

func (r *errorRow) Scan(...any) error {
	return r.err
}
