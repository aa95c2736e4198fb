// Command raidnight-sim runs battles headless with every actor on autopilot
// and prints where everyone ended up.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"chosenoffset.com/raidnight/internal/logger"
	"chosenoffset.com/raidnight/internal/session"
)

func main() {
	var opts session.Options
	opts.RegisterFlags(flag.CommandLine)
	rounds := flag.Int("rounds", 10, "number of rounds to play")
	delta := flag.Float64("delta", 1.0/60, "seconds per simulated tick")
	flag.Parse()

	if opts.List {
		if err := session.PrintCatalog(os.Stdout, opts); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	session.Env()
	ctx := context.Background()
	defer session.StartTelemetry(ctx)()

	sched, err := session.Open(opts)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to start")
	}
	w := sched.World()
	w.AutoPlay = true

	ticks, err := sched.RunRounds(ctx, *rounds, *delta)
	if err != nil {
		logger.Log.WithError(err).Error("simulation stopped early")
	}
	logger.Log.WithFields(logrus.Fields{
		"rounds": w.Tracker.Round,
		"ticks":  ticks,
	}).Info("simulation finished")

	snap := w.Snapshot()
	for _, a := range snap.Actors {
		fmt.Fprintf(os.Stdout, "%-10s %-6s %s\n", a.Name, a.Kind, a.Pos)
	}
	if err != nil {
		os.Exit(1)
	}
}
