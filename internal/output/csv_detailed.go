package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// CSVDetailedExporter writes one row per simulated year of every trajectory.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string { return "csv" }

func (c CSVDetailedExporter) Format(report *domain.SimulationReport) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Mode", "Trial", "StartYear", "EndYear", "Year", "Age", "Retired", "Balance", "Expenses",
		"Income", "Contribution", "Withdrawal", "Tax", "MarginalRate", "DrawRate", "Yield", "MarketYear", "Failed"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, sr := range report.Scenarios() {
		for _, traj := range sr.Trajectories {
			p := traj.Provenance
			for _, rec := range traj.Records {
				row := []string{
					string(sr.Mode),
					intToString(p.Trial),
					intToString(p.StartYear),
					intToString(p.EndYear),
					intToString(rec.Year),
					intToString(rec.Age),
					boolToString(rec.Retired),
					rec.Balance.StringFixed(2),
					rec.Expenses.StringFixed(2),
					rec.Income.StringFixed(2),
					rec.Contribution.StringFixed(2),
					rec.Withdrawal.StringFixed(2),
					rec.Tax.StringFixed(2),
					rec.MarginalRate.String(),
					rec.DrawRate.StringFixed(6),
					rec.Yield.String(),
					intToString(rec.MarketYear),
					boolToString(rec.Failed),
				}
				if err := w.Write(row); err != nil {
					return nil, err
				}
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
