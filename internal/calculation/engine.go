package calculation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rpgo/retirement-simulator/internal/domain"
)

// SimulationEngine orchestrates the uniform, historical and Monte Carlo runs
// for one profile.
type SimulationEngine struct {
	Dataset *HistoricalDataset
	Workers int
	Logger  Logger

	// Start overrides the simulation start date; zero uses the clock.
	Start time.Time
	// Seed fixes the Monte Carlo seed; nil draws one from the seed provider.
	Seed *int64
}

// NewSimulationEngine creates an engine over an optional historical dataset.
func NewSimulationEngine(dataset *HistoricalDataset) *SimulationEngine {
	return &SimulationEngine{Dataset: dataset, Logger: NopLogger{}}
}

// SetLogger sets the logger for the engine. If nil is provided, a no-op logger is used.
func (se *SimulationEngine) SetLogger(l Logger) {
	se.Logger = loggerOrNop(l)
}

// StartDate returns the date the simulation begins.
func (se *SimulationEngine) StartDate() time.Time {
	if se.Start.IsZero() {
		return nowFunc()
	}
	return se.Start
}

// Runners builds the runners for the requested modes. An empty list means all
// modes; historical is skipped when no dataset is loaded.
func (se *SimulationEngine) Runners(start time.Time, modes ...domain.Mode) ([]ScenarioRunner, error) {
	if len(modes) == 0 {
		modes = []domain.Mode{domain.ModeUniform, domain.ModeHistorical, domain.ModeMonteCarlo}
	}
	opts := RunnerOptions{Start: start, Workers: se.Workers, Logger: loggerOrNop(se.Logger)}

	var runners []ScenarioRunner
	for _, mode := range modes {
		switch mode {
		case domain.ModeUniform:
			runners = append(runners, UniformRunner{RunnerOptions: opts})
		case domain.ModeHistorical:
			if se.Dataset == nil {
				opts.Logger.Warnf("historical returns not loaded; skipping historical simulation")
				continue
			}
			runners = append(runners, HistoricalRunner{RunnerOptions: opts, Dataset: se.Dataset})
		case domain.ModeMonteCarlo:
			mc := NewMonteCarloRunner(opts)
			if se.Seed != nil {
				mc.Seed = *se.Seed
			}
			runners = append(runners, mc)
		default:
			return nil, fmt.Errorf("unknown simulation mode %q", mode)
		}
	}
	return runners, nil
}

// Run validates the profile and executes the requested modes in order.
func (se *SimulationEngine) Run(ctx context.Context, profile *domain.Profile, modes ...domain.Mode) (*domain.SimulationReport, error) {
	start := se.StartDate()
	if err := ValidateProfile(profile, start); err != nil {
		return nil, err
	}

	runners, err := se.Runners(start, modes...)
	if err != nil {
		return nil, err
	}

	report := &domain.SimulationReport{
		RunID:       uuid.NewString(),
		ProfileName: profile.Name(),
		GeneratedAt: nowFunc(),
		StartDate:   start,
		Profile:     profile,
	}
	for _, runner := range runners {
		result, err := runner.Run(ctx, profile)
		if err != nil {
			return nil, err
		}
		switch runner.Mode() {
		case domain.ModeUniform:
			report.Uniform = result
		case domain.ModeHistorical:
			report.Historical = result
			report.Dataset = se.Dataset.Summary()
		case domain.ModeMonteCarlo:
			report.MonteCarlo = result
		}
	}
	return report, nil
}

// ParseMode maps a user-supplied name to a Mode.
func ParseMode(name string) (domain.Mode, error) {
	switch domain.Mode(name) {
	case domain.ModeUniform, domain.ModeHistorical, domain.ModeMonteCarlo:
		return domain.Mode(name), nil
	case "mc", "monte-carlo":
		return domain.ModeMonteCarlo, nil
	}
	return "", fmt.Errorf("unknown simulation mode %q", name)
}
