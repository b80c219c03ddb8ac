package output

import (
	"time"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

func rec(year, age int, retired bool, balance int64, failed bool) domain.YearRecord {
	return domain.YearRecord{
		Year:         year,
		Age:          age,
		Retired:      retired,
		Balance:      decimal.NewFromInt(balance),
		Expenses:     decimal.NewFromInt(40000),
		Income:       decimal.NewFromInt(12000),
		Tax:          decimal.NewFromInt(3100),
		MarginalRate: decimal.RequireFromString("0.12"),
		DrawRate:     decimal.RequireFromString("0.0425"),
		Yield:        decimal.RequireFromString("0.05"),
		Failed:       failed,
	}
}

func buildTestReport() *domain.SimulationReport {
	uniform := domain.Trajectory{
		Provenance: domain.Provenance{Mode: domain.ModeUniform},
		Records: []domain.YearRecord{
			rec(2025, 64, false, 1050000, false),
			rec(2026, 65, true, 1020000, false),
			rec(2027, 66, true, 990000, false),
		},
		Success:         true,
		YearsSurvived:   3,
		TerminalBalance: decimal.NewFromInt(990000),
		AverageYield:    decimal.RequireFromString("0.05"),
	}
	histWorst := domain.Trajectory{
		Provenance:      domain.Provenance{Mode: domain.ModeHistorical, StartYear: 1966, EndYear: 1968, Trial: 1},
		Records:         []domain.YearRecord{rec(2025, 64, true, 500000, false), rec(2026, 65, true, 0, true)},
		YearsSurvived:   1,
		TerminalBalance: decimal.Zero,
		AverageYield:    decimal.RequireFromString("-0.02"),
	}
	histBest := domain.Trajectory{
		Provenance:      domain.Provenance{Mode: domain.ModeHistorical, StartYear: 1982, EndYear: 1984, Trial: 2},
		Records:         []domain.YearRecord{rec(2025, 64, true, 1234567, false), rec(2026, 65, true, 1500000, false)},
		Success:         true,
		YearsSurvived:   2,
		TerminalBalance: decimal.NewFromInt(1500000),
		AverageYield:    decimal.RequireFromString("0.11"),
	}
	return &domain.SimulationReport{
		RunID:       "run-1",
		ProfileName: "Alex",
		GeneratedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		StartDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Uniform: &domain.ScenarioResult{
			Mode:               domain.ModeUniform,
			Trajectories:       []domain.Trajectory{uniform},
			Completed:          1,
			Successful:         1,
			SuccessRate:        decimal.NewFromInt(100),
			MinTerminalBalance: decimal.NewFromInt(990000),
			MaxTerminalBalance: decimal.NewFromInt(990000),
		},
		Historical: &domain.ScenarioResult{
			Mode:         domain.ModeHistorical,
			Trajectories: []domain.Trajectory{histWorst, histBest},
			Completed:    2,
			Successful:   1,
			Aborted: []domain.TrialError{{
				Provenance: domain.Provenance{Mode: domain.ModeHistorical, StartYear: 1990, EndYear: 1992, Trial: 3},
				Err:        "missing historical year: 1991",
			}},
			SuccessRate:        decimal.NewFromInt(50),
			MinTerminalBalance: decimal.Zero,
			MaxTerminalBalance: decimal.NewFromInt(1500000),
		},
	}
}
