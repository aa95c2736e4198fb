package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"chosenoffset.com/raidnight/internal/game"
	"chosenoffset.com/raidnight/internal/logger"
	ebitenrender "chosenoffset.com/raidnight/internal/render/ebiten"
	"chosenoffset.com/raidnight/internal/session"
)

func main() {
	var opts session.Options
	opts.RegisterFlags(flag.CommandLine)
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
	win := sched.World().Config.Window

	// Initialize the renderer backend (ebiten)
	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	engine := ebitenrender.NewEngine()

	g := game.New(ctx, sched, renderer, inputMgr, win, engine.TPS())

	engine.SetWindowSize(win.Width, win.Height)
	engine.SetWindowTitle(win.Title)
	engine.SetWindowResizable(true)

	logger.Log.Info("starting game")
	if err := engine.RunGame(g); err != nil {
		logger.Log.WithError(err).Fatal("game exited")
	}
}
