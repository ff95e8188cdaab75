package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"

	"github.com/VladislavSG/signal/observability/querylog"
	"github.com/VladislavSG/signal/observability/querymetrics"
	"github.com/VladislavSG/signal/session"
	pgxsession "github.com/VladislavSG/signal/session/pgx"
)

const (
	queryKey  = "query"
	repeatKey = "repeat"
	slowKey   = "slow"
	holdKey   = "hold"
)

func (a *app) traceCommand() *cli.Command {
	return &cli.Command{
		Name:  "trace",
		Usage: "Run a query through an instrumented session and log every event",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  queryKey,
				Usage: "SQL to run",
				Value: "SELECT 1",
			},
			&cli.UintFlag{
				Name:  repeatKey,
				Usage: "Number of times the query runs inside the session",
				Value: 1,
			},
			&cli.DurationFlag{
				Name:  slowKey,
				Usage: "Queries slower than this are logged at warn level",
				Value: 100 * time.Millisecond,
			},
			&cli.DurationFlag{
				Name:  holdKey,
				Usage: "Keep serving metrics for this long after the session ends",
			},
		},
		Action: a.trace,
	}
}

func (a *app) trace(ctx context.Context, cmd *cli.Command) error {
	if err := a.cfg.RequireDatabase(); err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "unable to create connection pool")
	}
	defer pool.Close()

	sessionPool := pgxsession.NewSessionPool(pool)
	defer sessionPool.Close()

	logs := querylog.Attach(sessionPool, a.log, querylog.WithSlowThreshold(cmd.Duration(slowKey)))
	defer logs.Dispose()

	registry := prometheus.NewRegistry()
	metrics := querymetrics.NewCollector(querymetrics.WithRegistry(registry))
	recording := metrics.Attach(sessionPool)
	defer recording.Dispose()

	if a.cfg.MetricsAddr != "" {
		stop := a.serveMetrics(registry)
		defer stop()
	}

	query := cmd.String(queryKey)
	repeat := int(cmd.Uint(repeatKey))
	rowCount := 0
	err = sessionPool.Session(ctx, func(s session.Session) error {
		conn := s.(session.DbSession).Connection()
		for i := 0; i < repeat; i++ {
			n, err := countRows(conn, query)
			if err != nil {
				return err
			}
			rowCount += n
		}
		return nil
	})
	if err != nil {
		return err
	}
	a.log.Info().Str("query", query).Int("repeat", repeat).Int("rows", rowCount).Msg("Trace finished")

	if hold := cmd.Duration(holdKey); hold > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(hold):
		}
	}
	return nil
}

func countRows(conn session.DbConnection, query string) (int, error) {
	rows, err := conn.Query(query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		n++
	}
	return n, rows.Err()
}

func (a *app) serveMetrics(registry *prometheus.Registry) func() {
	log := a.log.With().Str("component", "metrics").Logger()
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Metrics server failed")
		}
	}()
	log.Info().Str("addr", a.cfg.MetricsAddr).Msg("Serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("Metrics server shutdown failed")
		}
	}
}
