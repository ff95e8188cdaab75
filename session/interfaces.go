package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/VladislavSG/signal/signals"
)

type SessionCallback func(Session) error

type Session interface {
	Context() context.Context
	Atomic(SessionCallback) error
}

type SessionPoolCallback func(Session) error

type SessionPool interface {
	Session(context.Context, SessionPoolCallback) error
}

// Observable

type ObservableSession interface {
	Session
	ID() uuid.UUID
	OnAtomicStarted() signals.Signal[SessionScopeStartedEvent]
	OnAtomicEnded() signals.Signal[SessionScopeEndedEvent]
}

type ObservablePool interface {
	OnSessionStarted() signals.Signal[SessionScopeStartedEvent]
	OnSessionEnded() signals.Signal[SessionScopeEndedEvent]
	OnQueryStarted() signals.Signal[QueryStartedEvent]
	OnQueryEnded() signals.Signal[QueryEndedEvent]
}

// Db

type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

type Rows interface {
	Close() error
	Err() error
	Next() bool
	Scan(dest ...any) error
}

type Row interface {
	Err() error
	Scan(dest ...any) error
}

type DbExecutor interface {
	Exec(query string, args ...any) (Result, error)
}

type DbQuerier interface {
	Query(query string, args ...any) (Rows, error)
}

type DbSingleQuerier interface {
	QueryRow(query string, args ...any) Row
}

type DbConnection interface {
	DbExecutor
	DbQuerier
	DbSingleQuerier
}

type DbSession interface {
	ObservableSession
	Connection() DbConnection
}
