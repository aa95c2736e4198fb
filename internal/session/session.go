// Package session wires a runnable battle from command line options. It is
// shared by every front end.
package session

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"chosenoffset.com/raidnight/internal/catalog"
	"chosenoffset.com/raidnight/internal/entity"
	"chosenoffset.com/raidnight/internal/logger"
	"chosenoffset.com/raidnight/internal/schedule"
	"chosenoffset.com/raidnight/internal/simulation"
	"chosenoffset.com/raidnight/internal/telemetry"
)

// Options select the config, the encounter and the seed.
type Options struct {
	ConfigPath   string
	Encounter    string // Catalog name or file path; empty loads the built-in skirmish
	EncounterDir string // Searched for named encounters
	Seed         int64  // Overrides the config seed when non-zero
	List         bool   // Print the catalog and exit
}

// RegisterFlags binds the shared flags on fs.
func (o *Options) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&o.ConfigPath, "config", "config.yaml", "path to the YAML config")
	fs.StringVar(&o.Encounter, "encounter", "", "encounter name or YAML file (default: built-in skirmish)")
	fs.StringVar(&o.EncounterDir, "encounters", "encounters", "directory of encounter files")
	fs.BoolVar(&o.List, "list", false, "list available encounters and exit")
	fs.Int64Var(&o.Seed, "seed", 0, "random seed (0 uses the config seed or the clock)")
}

// Env loads .env when present and initializes logging from the environment.
func Env() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Init()
		logger.Log.WithError(err).Warn(".env not loaded")
		return
	}
	logger.Init()
}

// StartTelemetry installs the tracer provider. Failure is logged and the
// session carries on untraced.
func StartTelemetry(ctx context.Context) func() {
	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		logger.Log.WithError(err).Warn("telemetry setup failed, running without tracing")
		return func() {}
	}
	return func() {
		if err := shutdown(ctx); err != nil {
			logger.Log.WithError(err).Error("telemetry shutdown")
		}
	}
}

// Open builds the world described by opts and a scheduler over it.
func Open(opts Options) (*schedule.Scheduler, error) {
	cfg, err := simulation.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.Seed != 0 {
		cfg.Seed = opts.Seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	enc, err := resolveEncounter(opts)
	if err != nil {
		return nil, fmt.Errorf("load encounter: %w", err)
	}

	w, err := schedule.NewWorld(cfg, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		return nil, err
	}
	if err := w.Load(enc); err != nil {
		return nil, fmt.Errorf("populate %q: %w", enc.Name, err)
	}

	logger.For("session").WithFields(logrus.Fields{
		"seed":      cfg.Seed,
		"encounter": enc.Name,
		"grid":      fmt.Sprintf("%dx%d", cfg.Grid.Width, cfg.Grid.Height),
	}).Info("session opened")

	return schedule.New(w, telemetry.Tracer("schedule")), nil
}

// resolveEncounter treats opts.Encounter as a file path when one exists and
// as a catalog name otherwise.
func resolveEncounter(opts Options) (*entity.Encounter, error) {
	if opts.Encounter == "" {
		return entity.DefaultEncounter(), nil
	}
	if _, err := os.Stat(opts.Encounter); err == nil {
		return entity.LoadEncounter(opts.Encounter)
	}

	entries, err := catalog.Scan(opts.EncounterDir)
	if err != nil {
		return nil, err
	}
	e, ok := catalog.Find(entries, opts.Encounter)
	if !ok {
		return nil, fmt.Errorf("no encounter named %q", opts.Encounter)
	}
	return e.Load()
}

// PrintCatalog writes one line per available encounter.
func PrintCatalog(out io.Writer, opts Options) error {
	entries, err := catalog.Scan(opts.EncounterDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintln(out, e); err != nil {
			return err
		}
	}
	return nil
}
