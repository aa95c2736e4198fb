// Command raidnight-term plays a battle in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"chosenoffset.com/raidnight/internal/logger"
	"chosenoffset.com/raidnight/internal/session"
	"chosenoffset.com/raidnight/internal/tui"
)

func main() {
	var opts session.Options
	opts.RegisterFlags(flag.CommandLine)
	tps := flag.Int("tps", 30, "ticks per second")
	logPath := flag.String("log", "", "write logs to this file instead of discarding them")
	flag.Parse()

	if opts.List {
		if err := session.PrintCatalog(os.Stdout, opts); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	session.Env()
	// stderr belongs to the terminal UI while it runs
	logger.Log.SetOutput(io.Discard)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.Log.SetOutput(os.Stderr)
			logger.Log.WithError(err).Fatal("failed to open log file")
		}
		defer f.Close()
		logger.Log.SetOutput(f)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer session.StartTelemetry(ctx)()

	sched, err := session.Open(opts)
	if err != nil {
		logger.Log.SetOutput(os.Stderr)
		logger.Log.WithError(err).Fatal("failed to start")
	}

	screen, err := tui.NewScreen(nil)
	if err != nil {
		logger.Log.SetOutput(os.Stderr)
		logger.Log.WithError(err).Fatal("failed to open terminal")
	}

	if err := tui.NewApp(screen, sched, *tps).Run(ctx); err != nil && ctx.Err() == nil {
		logger.Log.SetOutput(os.Stderr)
		logger.Log.WithError(err).Fatal("game error")
	}
}
