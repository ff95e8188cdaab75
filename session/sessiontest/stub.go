// Package sessiontest provides in-memory sessions that emit the same signals
// as the database backed ones.
package sessiontest

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/VladislavSG/signal/session"
	"github.com/VladislavSG/signal/session/result"
	"github.com/VladislavSG/signal/signals"
)

var ErrNoCurrentRow = errors.New("no current row")

// PoolStub hands out SessionStub instances sharing one Rows fixture.
type PoolStub struct {
	*session.PoolSignals
	Rows *RowsStub
	// QueryErr, when set, is returned by every query.
	QueryErr error
	Sessions []*SessionStub
}

func NewPoolStub(rows *RowsStub) *PoolStub {
	return &PoolStub{
		PoolSignals: session.NewPoolSignals(),
		Rows:        rows,
	}
}

func (p *PoolStub) Session(ctx context.Context, callback session.SessionPoolCallback) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sess := newSessionStub(ctx, p)
	p.Sessions = append(p.Sessions, sess)
	return p.ObserveSession(sess, func() error {
		return callback(sess)
	})
}

type SessionStub struct {
	ctx             context.Context
	id              uuid.UUID
	pool            *PoolStub
	conn            *connectionStub
	onAtomicStarted *signals.SignalImp[session.SessionScopeStartedEvent]
	onAtomicEnded   *signals.SignalImp[session.SessionScopeEndedEvent]
	ActualQuery     string
	ActualParams    []any
}

func newSessionStub(ctx context.Context, pool *PoolStub) *SessionStub {
	stub := &SessionStub{
		ctx:             ctx,
		id:              session.NewSessionID(),
		pool:            pool,
		onAtomicStarted: signals.NewSignal[session.SessionScopeStartedEvent](),
		onAtomicEnded:   signals.NewSignal[session.SessionScopeEndedEvent](),
	}
	stub.conn = &connectionStub{session: stub}
	return stub
}

func (s *SessionStub) Context() context.Context {
	return s.ctx
}

func (s *SessionStub) ID() uuid.UUID {
	return s.id
}

func (s *SessionStub) Atomic(callback session.SessionCallback) error {
	return session.ObserveScope(s.onAtomicStarted, s.onAtomicEnded, s.id, s, func() error {
		return callback(s)
	})
}

func (s *SessionStub) Connection() session.DbConnection {
	return s.conn
}

func (s *SessionStub) OnAtomicStarted() signals.Signal[session.SessionScopeStartedEvent] {
	return s.onAtomicStarted
}

func (s *SessionStub) OnAtomicEnded() signals.Signal[session.SessionScopeEndedEvent] {
	return s.onAtomicEnded
}

type connectionStub struct {
	session *SessionStub
}

func (c *connectionStub) observe(query string, args []any) error {
	c.session.ActualQuery = query
	c.session.ActualParams = args
	pool := c.session.pool
	return pool.ObserveQuery(c.session.id, query, args, func() error {
		return pool.QueryErr
	})
}

func (c *connectionStub) Exec(query string, args ...any) (session.Result, error) {
	if err := c.observe(query, args); err != nil {
		return nil, err
	}
	return result.NewResult(0, 0), nil
}

func (c *connectionStub) Query(query string, args ...any) (session.Rows, error) {
	if err := c.observe(query, args); err != nil {
		return nil, err
	}
	return c.session.pool.Rows, nil
}

func (c *connectionStub) QueryRow(query string, args ...any) session.Row {
	if err := c.observe(query, args); err != nil {
		return &RowStub{err: err}
	}
	return &RowStub{rows: c.session.pool.Rows}
}

func NewRowsStub(rows ...[]any) *RowsStub {
	return &RowsStub{
		rows: rows,
		idx:  -1,
	}
}

type RowsStub struct {
	rows   [][]any
	idx    int
	Closed bool
}

func (r *RowsStub) Close() error {
	r.Closed = true
	return nil
}

func (r *RowsStub) Err() error {
	return nil
}

func (r *RowsStub) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *RowsStub) Scan(dest ...any) error {
	if r.idx < 0 || r.idx >= len(r.rows) {
		return ErrNoCurrentRow
	}
	row := r.rows[r.idx]
	for i, val := range row {
		if i >= len(dest) {
			break
		}
		switch d := dest[i].(type) {
		case *int:
			*d = val.(int)
		case *int64:
			*d = val.(int64)
		case *string:
			*d = val.(string)
		case *bool:
			*d = val.(bool)
		case *any:
			*d = val
		}
	}
	return nil
}

type RowStub struct {
	rows *RowsStub
	err  error
}

func (r *RowStub) Err() error {
	return r.err
}

func (r *RowStub) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.rows == nil || !r.rows.Next() {
		r.err = ErrNoCurrentRow
		return r.err
	}
	r.err = r.rows.Scan(dest...)
	return r.err
}
