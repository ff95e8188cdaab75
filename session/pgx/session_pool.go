package pgx

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/VladislavSG/signal/session"
)

type SessionPool struct {
	*session.PoolSignals
	pool *pgxpool.Pool
}

func NewSessionPool(pool *pgxpool.Pool) *SessionPool {
	return &SessionPool{
		PoolSignals: session.NewPoolSignals(),
		pool:        pool,
	}
}

func (p *SessionPool) Session(ctx context.Context, callback session.SessionPoolCallback) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return errors.Wrap(err, "unable to acquire connection")
	}
	defer conn.Release()

	sess := NewSession(ctx, conn, p.PoolSignals)
	defer sess.close()

	return p.ObserveSession(sess, func() error {
		return callback(sess)
	})
}
