package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	"github.com/VladislavSG/signal/signals"
)

// PoolSignals holds the signals of an ObservablePool. Session implementations
// share the pool's instance so that observers attached to the pool see the
// queries of every session.
type PoolSignals struct {
	sessionStarted *signals.SignalImp[SessionScopeStartedEvent]
	sessionEnded   *signals.SignalImp[SessionScopeEndedEvent]
	queryStarted   *signals.SignalImp[QueryStartedEvent]
	queryEnded     *signals.SignalImp[QueryEndedEvent]
}

func NewPoolSignals() *PoolSignals {
	return &PoolSignals{
		sessionStarted: signals.NewSignal[SessionScopeStartedEvent](),
		sessionEnded:   signals.NewSignal[SessionScopeEndedEvent](),
		queryStarted:   signals.NewSignal[QueryStartedEvent](),
		queryEnded:     signals.NewSignal[QueryEndedEvent](),
	}
}

func (p *PoolSignals) OnSessionStarted() signals.Signal[SessionScopeStartedEvent] {
	return p.sessionStarted
}

func (p *PoolSignals) OnSessionEnded() signals.Signal[SessionScopeEndedEvent] {
	return p.sessionEnded
}

func (p *PoolSignals) OnQueryStarted() signals.Signal[QueryStartedEvent] {
	return p.queryStarted
}

func (p *PoolSignals) OnQueryEnded() signals.Signal[QueryEndedEvent] {
	return p.queryEnded
}

// Close detaches every observer.
func (p *PoolSignals) Close() {
	p.sessionStarted.Close()
	p.sessionEnded.Close()
	p.queryStarted.Close()
	p.queryEnded.Close()
}

// ObserveSession runs fn between the session started and ended notifications.
func (p *PoolSignals) ObserveSession(sess ObservableSession, fn func() error) error {
	return ObserveScope(p.sessionStarted, p.sessionEnded, sess.ID(), sess, fn)
}

// ObserveQuery runs fn between the query started and ended notifications.
// An error returned by a started observer aborts the query.
func (p *PoolSignals) ObserveQuery(sessionID uuid.UUID, query string, params []any, fn func() error) error {
	finish, err := p.StartQuery(sessionID, query, params)
	if err != nil {
		return err
	}
	return finish(fn())
}

// StartQuery notifies query start and returns the function reporting its end.
// It is meant for lazily evaluated queries whose outcome is known later.
func (p *PoolSignals) StartQuery(sessionID uuid.UUID, query string, params []any) (func(error) error, error) {
	id := NewQueryID()
	if err := p.queryStarted.Notify(QueryStartedEvent{
		QueryID:   id,
		SessionID: sessionID,
		Query:     query,
		Params:    params,
	}); err != nil {
		return nil, err
	}
	start := time.Now()
	return func(err error) error {
		endedErr := p.queryEnded.Notify(QueryEndedEvent{
			QueryID:      id,
			SessionID:    sessionID,
			Query:        query,
			Params:       params,
			ResponseTime: time.Since(start),
			Err:          err,
		})
		return combine(err, endedErr)
	}, nil
}

// ErrScopePanicked is reported to ended observers when fn panics. The panic
// itself keeps propagating.
var ErrScopePanicked = errors.New("session scope panicked")

// ObserveScope runs fn between notifications of started and ended.
// If a started observer fails, fn is not run and the ended notification
// carries the observer error, so observers that already saw the start still
// see the end.
func ObserveScope(
	started signals.Signal[SessionScopeStartedEvent],
	ended signals.Signal[SessionScopeEndedEvent],
	id uuid.UUID,
	sess Session,
	fn func() error,
) error {
	start := time.Now()
	end := func(err error) error {
		return ended.Notify(SessionScopeEndedEvent{
			SessionID: id,
			Session:   sess,
			Duration:  time.Since(start),
			Err:       err,
		})
	}

	if err := started.Notify(SessionScopeStartedEvent{SessionID: id, Session: sess}); err != nil {
		return combine(err, end(err))
	}

	returned := false
	defer func() {
		if !returned {
			_ = end(ErrScopePanicked)
		}
	}()
	err := fn()
	returned = true
	return combine(err, end(err))
}

func NewSessionID() uuid.UUID {
	return uuid.New()
}

func NewQueryID() ulid.ULID {
	return ulid.Make()
}

func combine(err, other error) error {
	if other == nil {
		return err
	}
	if err == nil {
		return other
	}
	return multierror.Append(err, other)
}
