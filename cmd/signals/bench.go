package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"

	"github.com/VladislavSG/signal/signals"
)

const (
	iterationsKey     = "iterations"
	maxSubscribersKey = "max-subscribers"
)

type benchEvent struct {
	value int
}

// scenario prepares a signal for one timed Notify call.
type scenario struct {
	name  string
	setup func(n int, sink *int) *signals.SignalImp[benchEvent]
}

var scenarios = []scenario{
	{name: "fan-out", setup: setupFanOut},
	{name: "self-disconnect", setup: setupSelfDisconnect},
	{name: "reentrant", setup: setupReentrant},
	{name: "move churn", setup: setupMoveChurn},
}

func (a *app) benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Measure Notify latency while observers mutate the signal",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  iterationsKey,
				Usage: "Timed Notify calls per scenario and size",
				Value: 1000,
			},
			&cli.UintFlag{
				Name:  maxSubscribersKey,
				Usage: "Largest subscriber count, sizes grow by powers of ten from 10",
				Value: 1000,
			},
		},
		Action: a.bench,
	}
}

func (a *app) bench(ctx context.Context, cmd *cli.Command) error {
	iterations := int(cmd.Uint(iterationsKey))
	maxSubscribers := int(cmd.Uint(maxSubscribersKey))
	if iterations <= 0 {
		return fmt.Errorf("%s must be positive", iterationsKey)
	}

	start := time.Now()
	a.log.Info().Int("iterations", iterations).Int("max_subscribers", maxSubscribers).Msg("Benchmark started")
	defer func() {
		a.log.Info().Dur("elapsed", time.Since(start)).Msg("Benchmark finished")
	}()

	tbl := table.NewWriter()
	tbl.SetTitle("Signal dispatch")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"scenario", "subscribers", "calls", "avg", "min", "p75", "p99", "max"})

	sink := 0
	for _, sc := range scenarios {
		for n := 10; n <= maxSubscribers; n *= 10 {
			if err := ctx.Err(); err != nil {
				return err
			}
			calc, calls, err := runScenario(sc, n, iterations, &sink)
			if err != nil {
				return err
			}
			tbl.AppendRow(table.Row{
				sc.name,
				humanize.Comma(int64(n)),
				humanize.Comma(int64(calls)),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
			})
		}
	}

	tbl.Render()
	return nil
}

func runScenario(sc scenario, n, iterations int, sink *int) (*tachymeter.Metrics, int, error) {
	tach := tachymeter.New(&tachymeter.Config{Size: iterations})
	before := *sink
	for i := 0; i < iterations; i++ {
		s := sc.setup(n, sink)
		begin := time.Now()
		err := s.Notify(benchEvent{value: 1})
		tach.AddTime(time.Since(begin))
		s.Close()
		if err != nil {
			return nil, 0, err
		}
	}
	return tach.Calc(), *sink - before, nil
}

func counter(sink *int) signals.Observer[benchEvent] {
	return func(e benchEvent) error {
		*sink += e.value
		return nil
	}
}

func setupFanOut(n int, sink *int) *signals.SignalImp[benchEvent] {
	s := signals.NewSignal[benchEvent]()
	for i := 0; i < n; i++ {
		s.Connect(counter(sink))
	}
	return s
}

func setupSelfDisconnect(n int, sink *int) *signals.SignalImp[benchEvent] {
	s := signals.NewSignal[benchEvent]()
	for i := 0; i < n; i++ {
		signals.Once[benchEvent](s, counter(sink))
	}
	return s
}

// setupReentrant makes the first observer notify once more, so every
// observer runs twice per timed call.
func setupReentrant(n int, sink *int) *signals.SignalImp[benchEvent] {
	s := signals.NewSignal[benchEvent]()
	depth := 0
	s.Connect(func(e benchEvent) error {
		*sink += e.value
		if depth > 0 {
			return nil
		}
		depth++
		defer func() { depth-- }()
		return s.Notify(e)
	})
	for i := 1; i < n; i++ {
		s.Connect(counter(sink))
	}
	return s
}

// setupMoveChurn makes the first observer move every other handle while the
// dispatch is positioned right before them.
func setupMoveChurn(n int, sink *int) *signals.SignalImp[benchEvent] {
	s := signals.NewSignal[benchEvent]()
	conns := make([]*signals.Connection[benchEvent], n)
	conns[0] = s.Connect(func(e benchEvent) error {
		*sink += e.value
		for i := 1; i < len(conns); i += 2 {
			conns[i] = conns[i].Move()
		}
		return nil
	})
	for i := 1; i < n; i++ {
		conns[i] = s.Connect(counter(sink))
	}
	return s
}
