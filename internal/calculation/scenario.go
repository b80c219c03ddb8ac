package calculation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ScenarioRunner produces an aggregated result for one return mode.
type ScenarioRunner interface {
	Mode() domain.Mode
	Run(ctx context.Context, profile *domain.Profile) (*domain.ScenarioResult, error)
}

// RunnerOptions are shared by every runner.
type RunnerOptions struct {
	Start   time.Time
	Workers int // 0 means unlimited
	Logger  Logger
}

func (o RunnerOptions) lifetime(profile *domain.Profile) *LifetimeSimulator {
	taxes := NewTaxEngine(profile.TaxRates)
	taxes.Logger = loggerOrNop(o.Logger)
	return &LifetimeSimulator{Profile: profile, Taxes: taxes, Start: o.Start, Logger: o.Logger}
}

// UniformRunner runs a single deterministic trajectory at the expected returns.
type UniformRunner struct {
	RunnerOptions
}

// Mode implements ScenarioRunner
func (UniformRunner) Mode() domain.Mode { return domain.ModeUniform }

// Run implements ScenarioRunner
func (u UniformRunner) Run(ctx context.Context, profile *domain.Profile) (*domain.ScenarioResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	model := UniformReturns{Expected: profile.Portfolio.ExpectedReturns()}
	traj, err := u.lifetime(profile).Run(model, domain.Provenance{Mode: domain.ModeUniform})
	if err != nil {
		return nil, fmt.Errorf("uniform simulation: %w", err)
	}
	return aggregate(domain.ModeUniform, []trialOutcome{{prov: traj.Provenance, traj: traj}}), nil
}

// HistoricalRunner replays the dataset once per calendar year in its range,
// wrapping to the first year when a trajectory outlasts the last. A gap in the
// range aborts only the trajectories that reach it.
type HistoricalRunner struct {
	RunnerOptions
	Dataset *HistoricalDataset
}

// Mode implements ScenarioRunner
func (HistoricalRunner) Mode() domain.Mode { return domain.ModeHistorical }

// Run implements ScenarioRunner
func (h HistoricalRunner) Run(ctx context.Context, profile *domain.Profile) (*domain.ScenarioResult, error) {
	if h.Dataset == nil {
		return nil, fmt.Errorf("historical simulation: no dataset loaded")
	}
	years := profile.Household().TimelineYears(h.Start)
	if years <= 0 {
		return nil, fmt.Errorf("historical simulation: household timeline is %d years: %w", years, ErrConfigInvalid)
	}
	sim := h.lifetime(profile)

	outcomes, err := runTrials(ctx, h.Dataset.Span(), h.Workers, func(i int) trialOutcome {
		prov := domain.Provenance{
			Mode:      domain.ModeHistorical,
			StartYear: h.Dataset.YearAt(i),
			EndYear:   h.Dataset.YearAt(i + years - 1),
			Trial:     i,
		}
		traj, err := sim.Run(NewHistoricalReturns(h.Dataset, i), prov)
		return trialOutcome{prov: prov, traj: traj, err: err}
	})
	if err != nil {
		return nil, fmt.Errorf("historical simulation: %w", err)
	}

	result := aggregate(domain.ModeHistorical, outcomes)
	loggerOrNop(h.Logger).Infof("historical: %d of %d start years succeeded, %d aborted",
		result.Successful, result.Completed, len(result.Aborted))
	return result, nil
}

type trialOutcome struct {
	prov domain.Provenance
	traj domain.Trajectory
	err  error
}

// runTrials fans n independent trials out over at most workers goroutines.
// Each result lands in its own slot so the output order never depends on
// completion order. Only ErrConfigInvalid or cancellation stops the batch.
func runTrials(ctx context.Context, n, workers int, trial func(i int) trialOutcome) ([]trialOutcome, error) {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	out := make([]trialOutcome, n)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = trial(i)
			if errors.Is(out[i].err, ErrConfigInvalid) {
				return out[i].err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// aggregate counts outcomes and orders completed trajectories worst to best.
func aggregate(mode domain.Mode, outcomes []trialOutcome) *domain.ScenarioResult {
	sr := &domain.ScenarioResult{
		Mode:               mode,
		SuccessRate:        decimal.Zero,
		MinTerminalBalance: decimal.Zero,
		MaxTerminalBalance: decimal.Zero,
	}

	for _, o := range outcomes {
		if o.err != nil {
			sr.Aborted = append(sr.Aborted, domain.TrialError{Provenance: o.prov, Err: o.err.Error()})
			continue
		}
		sr.Trajectories = append(sr.Trajectories, o.traj)
		if o.traj.Success {
			sr.Successful++
		}
	}
	sr.Completed = len(sr.Trajectories)
	if sr.Completed == 0 {
		return sr
	}

	sortTrajectories(sr.Trajectories)
	sr.SuccessRate = decimal.NewFromInt(int64(sr.Successful * 100)).Div(decimal.NewFromInt(int64(sr.Completed)))
	sr.MinTerminalBalance = sr.Trajectories[0].TerminalBalance
	sr.MaxTerminalBalance = sr.Trajectories[0].TerminalBalance
	for _, t := range sr.Trajectories {
		sr.MinTerminalBalance = decimal.Min(sr.MinTerminalBalance, t.TerminalBalance)
		sr.MaxTerminalBalance = decimal.Max(sr.MaxTerminalBalance, t.TerminalBalance)
	}
	return sr
}

// sortTrajectories orders by years survived, then terminal balance, then
// provenance so equal outcomes sort the same way on every run.
func sortTrajectories(trajs []domain.Trajectory) {
	sort.SliceStable(trajs, func(i, j int) bool {
		a, b := trajs[i], trajs[j]
		if a.YearsSurvived != b.YearsSurvived {
			return a.YearsSurvived < b.YearsSurvived
		}
		if c := a.TerminalBalance.Cmp(b.TerminalBalance); c != 0 {
			return c < 0
		}
		if a.Provenance.StartYear != b.Provenance.StartYear {
			return a.Provenance.StartYear < b.Provenance.StartYear
		}
		return a.Provenance.Trial < b.Provenance.Trial
	})
}
