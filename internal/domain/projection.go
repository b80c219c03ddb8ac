package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mode identifies which return model drove a scenario.
type Mode string

const (
	ModeUniform    Mode = "uniform"
	ModeHistorical Mode = "historical"
	ModeMonteCarlo Mode = "montecarlo"
)

// YearRecord is the snapshot of one simulated year. Rates are fractions.
type YearRecord struct {
	Year    int  `json:"year" yaml:"year"`
	Age     int  `json:"age" yaml:"age"`
	Retired bool `json:"retired" yaml:"retired"`

	Balance      decimal.Decimal `json:"balance" yaml:"balance"`
	Expenses     decimal.Decimal `json:"expenses" yaml:"expenses"`
	Income       decimal.Decimal `json:"income" yaml:"income"`
	Contribution decimal.Decimal `json:"contribution" yaml:"contribution"`
	Withdrawal   decimal.Decimal `json:"withdrawal" yaml:"withdrawal"`
	Tax          decimal.Decimal `json:"tax" yaml:"tax"`
	MarginalRate decimal.Decimal `json:"marginal_rate" yaml:"marginal_rate"`
	DrawRate     decimal.Decimal `json:"draw_rate" yaml:"draw_rate"`
	Yield        decimal.Decimal `json:"yield" yaml:"yield"`

	// MarketYear is the historical year whose returns were replayed, 0 otherwise.
	MarketYear int  `json:"market_year,omitempty" yaml:"market_year,omitempty"`
	Failed     bool `json:"failed" yaml:"failed"`
}

// Provenance identifies where a trajectory came from.
type Provenance struct {
	Mode      Mode `json:"mode" yaml:"mode"`
	StartYear int  `json:"start_year,omitempty" yaml:"start_year,omitempty"`
	EndYear   int  `json:"end_year,omitempty" yaml:"end_year,omitempty"`
	Trial     int  `json:"trial" yaml:"trial"`
}

// Trajectory is the full year-by-year outcome of one simulation run.
type Trajectory struct {
	Provenance      Provenance      `json:"provenance" yaml:"provenance"`
	Records         []YearRecord    `json:"records" yaml:"records"`
	Success         bool            `json:"success" yaml:"success"`
	YearsSurvived   int             `json:"years_survived" yaml:"years_survived"`
	TerminalBalance decimal.Decimal `json:"terminal_balance" yaml:"terminal_balance"`
	AverageYield    decimal.Decimal `json:"average_yield" yaml:"average_yield"`
}

// TrialError records a trajectory that aborted before completion.
type TrialError struct {
	Provenance Provenance `json:"provenance" yaml:"provenance"`
	Err        string     `json:"error" yaml:"error"`
}

// ScenarioResult aggregates every trajectory of one mode.
// Trajectories are ordered worst to best.
type ScenarioResult struct {
	Mode               Mode            `json:"mode" yaml:"mode"`
	Trajectories       []Trajectory    `json:"trajectories" yaml:"trajectories"`
	Completed          int             `json:"completed" yaml:"completed"`
	Successful         int             `json:"successful" yaml:"successful"`
	Aborted            []TrialError    `json:"aborted,omitempty" yaml:"aborted,omitempty"`
	SuccessRate        decimal.Decimal `json:"success_rate" yaml:"success_rate"`
	MinTerminalBalance decimal.Decimal `json:"min_terminal_balance" yaml:"min_terminal_balance"`
	MaxTerminalBalance decimal.Decimal `json:"max_terminal_balance" yaml:"max_terminal_balance"`
	Seed               int64           `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Worst returns the worst completed trajectory, or nil if none completed.
func (sr *ScenarioResult) Worst() *Trajectory {
	if sr == nil || len(sr.Trajectories) == 0 {
		return nil
	}
	return &sr.Trajectories[0]
}

// Best returns the best completed trajectory, or nil if none completed.
func (sr *ScenarioResult) Best() *Trajectory {
	if sr == nil || len(sr.Trajectories) == 0 {
		return nil
	}
	return &sr.Trajectories[len(sr.Trajectories)-1]
}

// DatasetSummary describes the historical returns used by a run.
type DatasetSummary struct {
	FirstYear int               `json:"first_year" yaml:"first_year"`
	LastYear  int               `json:"last_year" yaml:"last_year"`
	Years     int               `json:"years" yaml:"years"`
	Means     AssetClassReturns `json:"means" yaml:"means"`
	StdDevs   AssetClassReturns `json:"std_devs" yaml:"std_devs"`
}

// SimulationReport bundles the results of all scenario modes for one profile.
type SimulationReport struct {
	RunID       string          `json:"run_id" yaml:"run_id"`
	ProfileName string          `json:"profile_name" yaml:"profile_name"`
	GeneratedAt time.Time       `json:"generated_at" yaml:"generated_at"`
	StartDate   time.Time       `json:"start_date" yaml:"start_date"`
	Uniform     *ScenarioResult `json:"uniform,omitempty" yaml:"uniform,omitempty"`
	Historical  *ScenarioResult `json:"historical,omitempty" yaml:"historical,omitempty"`
	MonteCarlo  *ScenarioResult `json:"montecarlo,omitempty" yaml:"montecarlo,omitempty"`
	Dataset     *DatasetSummary `json:"dataset,omitempty" yaml:"dataset,omitempty"`
	Profile     *Profile        `json:"profile,omitempty" yaml:"profile,omitempty"`
}

// Scenarios returns the populated scenario results in reporting order.
func (r *SimulationReport) Scenarios() []*ScenarioResult {
	var out []*ScenarioResult
	for _, sr := range []*ScenarioResult{r.Uniform, r.Historical, r.MonteCarlo} {
		if sr != nil {
			out = append(out, sr)
		}
	}
	return out
}
