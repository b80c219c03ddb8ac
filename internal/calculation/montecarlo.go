package calculation

import (
	"context"
	"fmt"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// MonteCarloTrials is the fixed number of sampled trajectories per run.
const MonteCarloTrials = 1000

// MonteCarloRunner samples normally distributed class returns every year.
// Trial i draws from its own stream seeded by (Seed, i), so a fixed seed
// reproduces the result regardless of worker count.
type MonteCarloRunner struct {
	RunnerOptions
	Seed   int64
	Trials int // 0 means MonteCarloTrials
}

// NewMonteCarloRunner creates a runner with a seed from the seed provider.
func NewMonteCarloRunner(opts RunnerOptions) *MonteCarloRunner {
	return &MonteCarloRunner{RunnerOptions: opts, Seed: seedFunc(), Trials: MonteCarloTrials}
}

// Mode implements ScenarioRunner
func (MonteCarloRunner) Mode() domain.Mode { return domain.ModeMonteCarlo }

// Run implements ScenarioRunner
func (mc MonteCarloRunner) Run(ctx context.Context, profile *domain.Profile) (*domain.ScenarioResult, error) {
	trials := mc.Trials
	if trials <= 0 {
		trials = MonteCarloTrials
	}
	years := profile.Household().TimelineYears(mc.Start)
	if years <= 0 {
		return nil, fmt.Errorf("monte carlo simulation: household timeline is %d years: %w", years, ErrConfigInvalid)
	}

	means := profile.Portfolio.ExpectedReturns()
	stdDevs := profile.Portfolio.StandardDeviations()
	sim := mc.lifetime(profile)

	outcomes, err := runTrials(ctx, trials, mc.Workers, func(i int) trialOutcome {
		prov := domain.Provenance{Mode: domain.ModeMonteCarlo, Trial: i}
		traj, err := sim.Run(NewMonteCarloReturns(means, stdDevs, mc.Seed, i), prov)
		return trialOutcome{prov: prov, traj: traj, err: err}
	})
	if err != nil {
		return nil, fmt.Errorf("monte carlo simulation: %w", err)
	}

	result := aggregate(domain.ModeMonteCarlo, outcomes)
	result.Seed = mc.Seed
	loggerOrNop(mc.Logger).Infof("monte carlo: seed=%d success=%s%% (%d of %d)",
		mc.Seed, result.SuccessRate.StringFixed(1), result.Successful, result.Completed)
	return result, nil
}
