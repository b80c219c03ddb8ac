package calculation

import (
	"fmt"
	"time"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/rpgo/retirement-simulator/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// LifetimeSimulator runs one trajectory from the start date to the end of the
// household's longest life expectancy.
type LifetimeSimulator struct {
	Profile *domain.Profile
	Taxes   *TaxEngine
	Start   time.Time
	Logger  Logger
}

// Run simulates every year with the given return model.
func (ls *LifetimeSimulator) Run(returns ReturnModel, prov domain.Provenance) (domain.Trajectory, error) {
	years := ls.Profile.Household().TimelineYears(ls.Start)
	if years <= 0 {
		return domain.Trajectory{}, fmt.Errorf("household timeline is %d years: %w", years, ErrConfigInvalid)
	}

	ys := NewYearSimulator(ls.Profile, ls.Taxes, returns)
	state := &PortfolioState{Balance: ls.Profile.Portfolio.Balance}
	records := make([]domain.YearRecord, 0, years)

	for i := 0; i < years; i++ {
		date := dateutil.AddYears(ls.Start, i)
		rec, err := ys.Step(state, YearContext{Index: i, Year: date.Year()}, date)
		if err != nil {
			return domain.Trajectory{}, err
		}
		records = append(records, rec)
	}

	traj := summarizeTrajectory(records)
	traj.Provenance = prov
	loggerOrNop(ls.Logger).Debugf("trajectory %s start=%d trial=%d success=%t terminal=%s",
		prov.Mode, prov.StartYear, prov.Trial, traj.Success, traj.TerminalBalance.StringFixed(2))
	return traj, nil
}

// summarizeTrajectory derives the outcome fields from the year records.
func summarizeTrajectory(records []domain.YearRecord) domain.Trajectory {
	traj := domain.Trajectory{
		Records:         records,
		Success:         isSuccessful(records),
		YearsSurvived:   yearsSurvived(records),
		TerminalBalance: decimal.Zero,
		AverageYield:    decimal.Zero,
	}
	if len(records) == 0 {
		return traj
	}

	traj.TerminalBalance = records[len(records)-1].Balance
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Yield)
	}
	traj.AverageYield = total.Div(decimal.NewFromInt(int64(len(records))))
	return traj
}

// isSuccessful requires a strictly positive balance at the end of every year.
func isSuccessful(records []domain.YearRecord) bool {
	for _, r := range records {
		if r.Failed || !r.Balance.IsPositive() {
			return false
		}
	}
	return true
}

// yearsSurvived counts the years before the first failing year.
func yearsSurvived(records []domain.YearRecord) int {
	for i, r := range records {
		if r.Failed || !r.Balance.IsPositive() {
			return i
		}
	}
	return len(records)
}
