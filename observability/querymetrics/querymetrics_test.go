package querymetrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VladislavSG/signal/session"
	"github.com/VladislavSG/signal/session/sessiontest"
)

func TestCollector_CountsQueriesAndSessions(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(WithRegistry(reg), WithNamespace("test"))
	pool := sessiontest.NewPoolStub(sessiontest.NewRowsStub())
	c.Attach(pool)

	var activeDuringSession float64
	err := pool.Session(context.Background(), func(s session.Session) error {
		activeDuringSession = testutil.ToFloat64(c.sessionsActive)
		conn := s.(session.DbSession).Connection()
		if _, err := conn.Exec("UPDATE t SET a = 1"); err != nil {
			return err
		}
		_, err := conn.Exec("UPDATE t SET a = 2")
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, float64(1), activeDuringSession)
	assert.Equal(t, float64(0), testutil.ToFloat64(c.sessionsActive))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.queriesTotal.WithLabelValues(statusOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.sessionsTotal.WithLabelValues(statusOK)))
	assert.Equal(t, 1, testutil.CollectAndCount(c.queryDuration))
}

func TestCollector_CountsFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(WithRegistry(reg))
	pool := sessiontest.NewPoolStub(sessiontest.NewRowsStub())
	pool.QueryErr = errors.New("timeout")
	c.Attach(pool)

	err := pool.Session(context.Background(), func(s session.Session) error {
		_, err := s.(session.DbSession).Connection().Query("SELECT 1")
		return err
	})
	assert.Error(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.queriesTotal.WithLabelValues(statusError)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.sessionsTotal.WithLabelValues(statusError)))
}

func TestCollector_DisposeStopsRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(WithRegistry(reg))
	pool := sessiontest.NewPoolStub(sessiontest.NewRowsStub())
	c.Attach(pool).Dispose()

	err := pool.Session(context.Background(), func(s session.Session) error {
		_, err := s.(session.DbSession).Connection().Exec("DELETE FROM t")
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, 0, testutil.CollectAndCount(c.queriesTotal))
}

func TestNewCollector_RegistersMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(WithRegistry(reg), WithNamespace("app"), WithSubsystem("db"))
	assert.Panics(t, func() {
		NewCollector(WithRegistry(reg), WithNamespace("app"), WithSubsystem("db"))
	})
}

func TestCollector_AbortedSessionLeavesNoActiveSession(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(WithRegistry(reg))
	pool := sessiontest.NewPoolStub(sessiontest.NewRowsStub())
	c.Attach(pool)
	expectedErr := errors.New("deny")
	pool.OnSessionStarted().Attach(func(session.SessionScopeStartedEvent) error {
		return expectedErr
	})

	err := pool.Session(context.Background(), func(session.Session) error { return nil })

	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, float64(0), testutil.ToFloat64(c.sessionsActive))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.sessionsTotal.WithLabelValues(statusError)))
}

func TestCollector_AttachedDuringSession(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(WithRegistry(reg))
	pool := sessiontest.NewPoolStub(sessiontest.NewRowsStub())

	err := pool.Session(context.Background(), func(session.Session) error {
		c.Attach(pool)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, float64(0), testutil.ToFloat64(c.sessionsActive))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.sessionsTotal.WithLabelValues(statusOK)))
}

func TestCollector_PanickingSessionLeavesNoActiveSession(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(WithRegistry(reg))
	pool := sessiontest.NewPoolStub(sessiontest.NewRowsStub())
	c.Attach(pool)

	assert.Panics(t, func() {
		_ = pool.Session(context.Background(), func(session.Session) error {
			panic("boom")
		})
	})

	assert.Equal(t, float64(0), testutil.ToFloat64(c.sessionsActive))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.sessionsTotal.WithLabelValues(statusError)))
}
