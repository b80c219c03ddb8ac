package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// CSVSummarizer writes one row per trajectory, worst to best within each mode,
// followed by aborted trajectories with their error.
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv-summary" }

func (c CSVSummarizer) Format(report *domain.SimulationReport) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Mode", "Rank", "Trial", "StartYear", "EndYear", "Success", "YearsSurvived", "TerminalBalance", "AverageYield", "Error"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, sr := range report.Scenarios() {
		for i, traj := range sr.Trajectories {
			p := traj.Provenance
			row := []string{
				string(sr.Mode),
				intToString(i + 1),
				intToString(p.Trial),
				intToString(p.StartYear),
				intToString(p.EndYear),
				boolToString(traj.Success),
				intToString(traj.YearsSurvived),
				traj.TerminalBalance.StringFixed(2),
				traj.AverageYield.StringFixed(6),
				"",
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
		for _, a := range sr.Aborted {
			p := a.Provenance
			row := []string{string(sr.Mode), "", intToString(p.Trial), intToString(p.StartYear), intToString(p.EndYear), "", "", "", "", a.Err}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
