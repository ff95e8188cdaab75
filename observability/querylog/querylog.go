// Package querylog writes session and query events to a zerolog logger.
package querylog

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/VladislavSG/signal/disposable"
	"github.com/VladislavSG/signal/session"
)

type Option func(*logger)

// WithSlowThreshold logs successful queries slower than d at warn level.
func WithSlowThreshold(d time.Duration) Option {
	return func(l *logger) {
		l.slowThreshold = d
	}
}

// WithQueryParams includes bound parameters in query records.
func WithQueryParams() Option {
	return func(l *logger) {
		l.params = true
	}
}

type logger struct {
	log           zerolog.Logger
	slowThreshold time.Duration
	params        bool
}

// Attach subscribes to pool and logs until the returned disposable is disposed.
func Attach(pool session.ObservablePool, baseLogger zerolog.Logger, opts ...Option) disposable.Disposable {
	l := &logger{
		log: baseLogger.With().Str("component", "querylog").Logger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return disposable.NewCompositeDisposable(
		pool.OnSessionStarted().Attach(l.sessionStarted),
		pool.OnSessionEnded().Attach(l.sessionEnded),
		pool.OnQueryEnded().Attach(l.queryEnded),
	)
}

func (l *logger) sessionStarted(e session.SessionScopeStartedEvent) error {
	l.log.Debug().Str("session_id", e.SessionID.String()).Msg("Session started")
	return nil
}

func (l *logger) sessionEnded(e session.SessionScopeEndedEvent) error {
	ev := l.log.Debug()
	if e.Err != nil {
		ev = l.log.Warn().Err(e.Err)
	}
	ev.Str("session_id", e.SessionID.String()).
		Dur("duration", e.Duration).
		Msg("Session ended")
	return nil
}

func (l *logger) queryEnded(e session.QueryEndedEvent) error {
	var ev *zerolog.Event
	switch {
	case e.Err != nil:
		ev = l.log.Error().Err(e.Err)
	case l.slowThreshold > 0 && e.ResponseTime >= l.slowThreshold:
		ev = l.log.Warn().Bool("slow", true)
	default:
		ev = l.log.Debug()
	}
	ev = ev.Str("query_id", e.QueryID.String()).
		Str("session_id", e.SessionID.String()).
		Str("query", e.Query).
		Dur("response_time", e.ResponseTime)
	if l.params {
		ev = ev.Interface("params", e.Params)
	}
	ev.Msg("Query finished")
	return nil
}
