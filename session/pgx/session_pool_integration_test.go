package pgx

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VladislavSG/signal/session"
)

func newTestPool(t *testing.T) *SessionPool {
	dsn, ok := os.LookupEnv("DATABASE_URL")
	if !ok {
		t.Skip("DATABASE_URL is not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewSessionPool(pool)
}

func TestSessionPool_EmitsSessionAndQueryEvents(t *testing.T) {
	pool := newTestPool(t)
	var events []string
	pool.OnSessionStarted().Attach(func(e session.SessionScopeStartedEvent) error {
		events = append(events, "session started")
		return nil
	})
	pool.OnQueryEnded().Attach(func(e session.QueryEndedEvent) error {
		events = append(events, "query "+e.Query)
		return nil
	})
	pool.OnSessionEnded().Attach(func(e session.SessionScopeEndedEvent) error {
		events = append(events, "session ended")
		return nil
	})

	err := pool.Session(context.Background(), func(s session.Session) error {
		var one int64
		return s.(session.DbSession).Connection().QueryRow("SELECT 1").Scan(&one)
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"session started", "query SELECT 1", "session ended"}, events)
}

func TestSession_AtomicRollsBackOnError(t *testing.T) {
	pool := newTestPool(t)
	expectedErr := errors.New("rollback")
	var ended []session.SessionScopeEndedEvent

	err := pool.Session(context.Background(), func(s session.Session) error {
		dbSession := s.(session.DbSession)
		dbSession.OnAtomicEnded().Attach(func(e session.SessionScopeEndedEvent) error {
			ended = append(ended, e)
			return nil
		})
		return dbSession.Atomic(func(tx session.Session) error {
			if _, err := tx.(session.DbSession).Connection().Exec("CREATE TEMP TABLE signal_probe (id int)"); err != nil {
				return err
			}
			return tx.Atomic(func(session.Session) error {
				return expectedErr
			})
		})
	})

	assert.ErrorIs(t, err, expectedErr)
	require.Len(t, ended, 2)
	assert.ErrorIs(t, ended[0].Err, expectedErr)
	assert.ErrorIs(t, ended[1].Err, expectedErr)
}
