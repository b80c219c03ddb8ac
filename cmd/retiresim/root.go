package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/config"
	"github.com/rpgo/retirement-simulator/pkg/dateutil"
)

// app carries the resolved settings shared by every subcommand.
type app struct {
	settings *config.Settings
	logger   calculation.Logger
	start    time.Time
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "retiresim",
		Short: "Household retirement simulator",
		Long: `retiresim projects a household's retirement portfolio year by year.

It runs the plan under uniform expected returns, replays every historical
sequence from a returns file, and samples Monte Carlo trials, reporting how
often the money lasts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.String("returns", "", "Historical returns CSV (env RETIRESIM_RETURNS)")
	pf.Int64("seed", 0, "Fixed Monte Carlo seed (env RETIRESIM_SEED)")
	pf.Int("workers", 0, "Concurrent trajectories, 0 for one per CPU (env RETIRESIM_WORKERS)")
	pf.String("store", "", "SQLite file for run history (env RETIRESIM_STORE)")
	pf.String("start", "", "Simulation start date, MM/DD/YYYY or YYYY-MM-DD (default today)")
	pf.String("log-level", "", "debug | info | warn | error (env RETIRESIM_LOG_LEVEL)")
	pf.String("log-format", "", "text | json (env RETIRESIM_LOG_FORMAT)")

	rootCmd.AddCommand(
		newRunCmd(a, "run", "Run every simulation mode", nil),
		newModeCmd(a, "uniform"),
		newModeCmd(a, "historical"),
		newModeCmd(a, "montecarlo"),
		newServeCmd(a),
		newHistoryCmd(a),
		newExampleCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// init resolves settings: .env and environment first, then explicit flags.
func (a *app) init(cmd *cobra.Command) error {
	s, err := config.LoadSettings()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("returns") {
		s.Returns, _ = flags.GetString("returns")
	}
	if flags.Changed("seed") {
		seed, _ := flags.GetInt64("seed")
		s.Seed = &seed
	}
	if flags.Changed("workers") {
		s.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("store") {
		s.Store, _ = flags.GetString("store")
	}
	if flags.Changed("log-level") {
		s.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		s.LogFormat, _ = flags.GetString("log-format")
	}
	if raw, _ := flags.GetString("start"); raw != "" {
		start, err := dateutil.ParseDate(raw)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		a.start = start
	}
	a.settings = s
	a.logger = calculation.NewSlogLogger(setupLogger(s.LogLevel, s.LogFormat, cmd.ErrOrStderr()))
	return nil
}

// setupLogger builds the process logger. Logs go to w so stdout stays
// reserved for reports.
func setupLogger(levelName, format string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch levelName {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// engine builds a simulation engine from the resolved settings.
func (a *app) engine() (*calculation.SimulationEngine, error) {
	var dataset *calculation.HistoricalDataset
	if a.settings.Returns != "" {
		ds, err := calculation.LoadReturnsCSV(a.settings.Returns)
		if err != nil {
			return nil, err
		}
		first, last := ds.GetAvailableYears()
		a.logger.Debugf("loaded %d historical years (%d-%d) from %s", ds.Len(), first, last, a.settings.Returns)
		if missing := ds.MissingYears(); len(missing) > 0 {
			a.logger.Warnf("returns file has gaps at %v; sequences crossing them will abort", missing)
		}
		dataset = ds
	}
	eng := calculation.NewSimulationEngine(dataset)
	eng.Workers = a.settings.Workers
	eng.Seed = a.settings.Seed
	eng.Start = a.start
	eng.SetLogger(a.logger)
	return eng, nil
}

// parser returns an input parser that validates against the start date.
func (a *app) parser() *config.InputParser {
	p := config.NewInputParser()
	if !a.start.IsZero() {
		start := a.start
		p.Now = func() time.Time { return start }
	}
	return p
}
