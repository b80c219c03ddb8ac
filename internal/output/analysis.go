package output

import (
	"sort"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

// ScenarioOverview is one line of the cross-mode comparison.
type ScenarioOverview struct {
	Mode        domain.Mode
	Completed   int
	SuccessRate decimal.Decimal
	WorstEnding decimal.Decimal
	BestEnding  decimal.Decimal
}

// Recommendation names the mode with the least favorable outlook, which is the
// one a household should plan around.
type Recommendation struct {
	Mode        domain.Mode
	SuccessRate decimal.Decimal
}

// SummarizeScenarios builds one overview line per populated mode.
func SummarizeScenarios(report *domain.SimulationReport) []ScenarioOverview {
	if report == nil {
		return nil
	}
	var out []ScenarioOverview
	for _, sr := range report.Scenarios() {
		out = append(out, ScenarioOverview{
			Mode:        sr.Mode,
			Completed:   sr.Completed,
			SuccessRate: sr.SuccessRate,
			WorstEnding: sr.MinTerminalBalance,
			BestEnding:  sr.MaxTerminalBalance,
		})
	}
	return out
}

// AnalyzeScenarios picks the mode with the lowest success rate, breaking ties on
// the lower worst ending balance. Modes with no completed trajectories are skipped.
func AnalyzeScenarios(report *domain.SimulationReport) Recommendation {
	var ranks []ScenarioOverview
	for _, o := range SummarizeScenarios(report) {
		if o.Completed > 0 {
			ranks = append(ranks, o)
		}
	}
	if len(ranks) == 0 {
		return Recommendation{}
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		if !ranks[i].SuccessRate.Equal(ranks[j].SuccessRate) {
			return ranks[i].SuccessRate.LessThan(ranks[j].SuccessRate)
		}
		return ranks[i].WorstEnding.LessThan(ranks[j].WorstEnding)
	})
	return Recommendation{Mode: ranks[0].Mode, SuccessRate: ranks[0].SuccessRate}
}
