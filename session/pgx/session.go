package pgx

import (
	"context"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/VladislavSG/signal/session"
	"github.com/VladislavSG/signal/signals"
)

// scope is the state shared by a session and the atomic sessions nested in it.
type scope struct {
	ctx             context.Context
	id              uuid.UUID
	poolSignals     *session.PoolSignals
	onAtomicStarted *signals.SignalImp[session.SessionScopeStartedEvent]
	onAtomicEnded   *signals.SignalImp[session.SessionScopeEndedEvent]
}

func (s *scope) Context() context.Context {
	return s.ctx
}

func (s *scope) ID() uuid.UUID {
	return s.id
}

func (s *scope) OnAtomicStarted() signals.Signal[session.SessionScopeStartedEvent] {
	return s.onAtomicStarted
}

func (s *scope) OnAtomicEnded() signals.Signal[session.SessionScopeEndedEvent] {
	return s.onAtomicEnded
}

func (s *scope) connection(exec executor) *connection {
	return &connection{ctx: s.ctx, exec: exec, sessionID: s.id, signals: s.poolSignals}
}

// atomic runs callback inside tx, committing on success.
func (s *scope) atomic(tx pgx.Tx, atomicSession *AtomicSession, callback session.SessionCallback, what string) error {
	err := session.ObserveScope(s.onAtomicStarted, s.onAtomicEnded, s.id, atomicSession, func() error {
		return callback(atomicSession)
	})
	if err != nil {
		if txErr := tx.Rollback(s.ctx); txErr != nil {
			return multierror.Append(err, txErr)
		}
		return err
	}

	if txErr := tx.Commit(s.ctx); txErr != nil {
		return errors.Wrapf(txErr, "failed to commit %s", what)
	}

	return nil
}

// Session represents a database session without transaction
type Session struct {
	*scope
	conn *pgxpool.Conn
}

func NewSession(ctx context.Context, conn *pgxpool.Conn, poolSignals *session.PoolSignals) *Session {
	return &Session{
		scope: &scope{
			ctx:             ctx,
			id:              session.NewSessionID(),
			poolSignals:     poolSignals,
			onAtomicStarted: signals.NewSignal[session.SessionScopeStartedEvent](),
			onAtomicEnded:   signals.NewSignal[session.SessionScopeEndedEvent](),
		},
		conn: conn,
	}
}

func (s *Session) Connection() session.DbConnection {
	return s.connection(s.conn)
}

func (s *Session) Atomic(callback session.SessionCallback) error {
	tx, err := s.conn.Begin(s.ctx)
	if err != nil {
		return errors.Wrap(err, "unable to start transaction")
	}
	return s.atomic(tx, &AtomicSession{scope: s.scope, tx: tx}, callback, "transaction")
}

// close drops the observers of the atomic scopes once the session is released.
func (s *Session) close() {
	s.onAtomicStarted.Close()
	s.onAtomicEnded.Close()
}

// AtomicSession represents a session inside transaction or savepoint
type AtomicSession struct {
	*scope
	tx pgx.Tx
}

func (s *AtomicSession) Connection() session.DbConnection {
	return s.connection(s.tx)
}

func (s *AtomicSession) Atomic(callback session.SessionCallback) error {
	nestedTx, err := s.tx.Begin(s.ctx)
	if err != nil {
		return errors.Wrap(err, "unable to start savepoint")
	}
	return s.atomic(nestedTx, &AtomicSession{scope: s.scope, tx: nestedTx}, callback, "savepoint")
}
