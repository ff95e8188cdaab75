package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

type SessionScopeStartedEvent struct {
	SessionID uuid.UUID
	Session   Session
}

type SessionScopeEndedEvent struct {
	SessionID uuid.UUID
	Session   Session
	Duration  time.Duration
	Err       error
}

type QueryStartedEvent struct {
	QueryID   ulid.ULID
	SessionID uuid.UUID
	Query     string
	Params    []any
}

type QueryEndedEvent struct {
	QueryID      ulid.ULID
	SessionID    uuid.UUID
	Query        string
	Params       []any
	ResponseTime time.Duration
	Err          error
}
