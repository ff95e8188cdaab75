package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/VladislavSG/signal/internal/config"
	"github.com/VladislavSG/signal/internal/logger"
)

type app struct {
	cfg *config.Config
	log zerolog.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	a := &app{
		cfg: cfg,
		log: logger.New(cfg.IsDev(), cfg.LogLevel),
	}

	cmd := &cli.Command{
		Name:  "signals",
		Usage: "Benchmark signal dispatch and trace instrumented database sessions",
		Commands: []*cli.Command{
			a.benchCommand(),
			a.traceCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		a.log.Error().Err(err).Msg("Command failed")
		stop()
		os.Exit(1)
	}
}
