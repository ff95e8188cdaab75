// Package querymetrics exports session and query events as Prometheus metrics.
package querymetrics

import (
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/VladislavSG/signal/disposable"
	"github.com/VladislavSG/signal/session"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// Config configures the collector.
type Config struct {
	// Namespace is the metrics namespace (default: "signal").
	Namespace string

	// Subsystem is the metrics subsystem (default: "session").
	Subsystem string

	// Buckets are the histogram buckets for query duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

type Option func(*Config)

func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "signal",
		Subsystem: "session",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

type Collector struct {
	queriesTotal   *prometheus.CounterVec
	queryDuration  *prometheus.HistogramVec
	sessionsTotal  *prometheus.CounterVec
	sessionsActive prometheus.Gauge

	// sessions counted in sessionsActive
	mu     sync.Mutex
	active map[uuid.UUID]struct{}
}

// NewCollector registers the metrics. It panics if they are already
// registered with the configured registry.
func NewCollector(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		active: make(map[uuid.UUID]struct{}),

		queriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "queries_total",
			Help:      "Total number of finished queries",
		}, []string{"status"}),

		queryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "query_duration_seconds",
			Help:      "Query response time in seconds",
			Buckets:   config.Buckets,
		}, []string{"status"}),

		sessionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "sessions_total",
			Help:      "Total number of finished sessions",
		}, []string{"status"}),

		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "sessions_active",
			Help:      "Number of sessions in progress",
		}),
	}
}

// Attach records the events of pool until the returned disposable is disposed.
func (c *Collector) Attach(pool session.ObservablePool) disposable.Disposable {
	return disposable.NewCompositeDisposable(
		pool.OnSessionStarted().Attach(c.sessionStarted),
		pool.OnSessionEnded().Attach(c.sessionEnded),
		pool.OnQueryEnded().Attach(func(e session.QueryEndedEvent) error {
			s := status(e.Err)
			c.queriesTotal.WithLabelValues(s).Inc()
			c.queryDuration.WithLabelValues(s).Observe(e.ResponseTime.Seconds())
			return nil
		}),
	)
}

func (c *Collector) sessionStarted(e session.SessionScopeStartedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active[e.SessionID] = struct{}{}
	c.sessionsActive.Inc()
	return nil
}

// sessionEnded only decrements the gauge for sessions whose start was seen,
// so a collector attached mid-session never goes negative.
func (c *Collector) sessionEnded(e session.SessionScopeEndedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.active[e.SessionID]; ok {
		delete(c.active, e.SessionID)
		c.sessionsActive.Dec()
	}
	c.sessionsTotal.WithLabelValues(status(e.Err)).Inc()
	return nil
}

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusOK
}
