package output

import (
	"bytes"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/rpgo/retirement-simulator/internal/domain"
)

// TableFormatter renders the report as console text with one year-by-year table
// per scenario mode.
type TableFormatter struct{}

func (t TableFormatter) Name() string { return "table" }

var modeTitles = map[domain.Mode]string{
	domain.ModeUniform:    "-= Simulation using uniform returns =-",
	domain.ModeHistorical: "-= Historical simulation =-",
	domain.ModeMonteCarlo: "-= Monte Carlo simulation =-",
}

func (t TableFormatter) Format(report *domain.SimulationReport) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "RETIREMENT SIMULATION")
	fmt.Fprintln(&buf, "================================")
	if report.ProfileName != "" {
		fmt.Fprintf(&buf, "Household: %s\n", report.ProfileName)
	}
	if !report.StartDate.IsZero() {
		fmt.Fprintf(&buf, "Start date: %s\n", report.StartDate.Format("01/02/2006"))
	}
	if report.Profile != nil {
		fmt.Fprintln(&buf, "Assumptions:")
		for _, a := range GenerateAssumptions(report.Profile) {
			fmt.Fprintf(&buf, "  - %s\n", a)
		}
	}

	for _, sr := range report.Scenarios() {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, modeTitles[sr.Mode])
		fmt.Fprintln(&buf)
		var err error
		if sr.Mode == domain.ModeUniform {
			err = writeUniform(&buf, sr)
		} else {
			err = writeScan(&buf, sr)
		}
		if err != nil {
			return nil, err
		}
	}

	if overview := SummarizeScenarios(report); len(overview) > 1 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "Overview:")
		for _, o := range overview {
			fmt.Fprintf(&buf, "  %-10s success %s, ending balance %s to %s\n", o.Mode,
				FormatPercentage(o.SuccessRate), FormatWholeCurrency(o.WorstEnding), FormatWholeCurrency(o.BestEnding))
		}
		if rec := AnalyzeScenarios(report); rec.Mode != "" {
			fmt.Fprintf(&buf, "Plan around: %s (%s success)\n", rec.Mode, FormatPercentage(rec.SuccessRate))
		}
	}
	return buf.Bytes(), nil
}

func writeUniform(w io.Writer, sr *domain.ScenarioResult) error {
	traj := sr.Worst()
	if traj == nil {
		writeAborted(w, sr)
		return nil
	}
	if traj.Success {
		fmt.Fprintln(w, "Retirement succeeded!")
	} else {
		fmt.Fprintln(w, "Retirement failed")
	}
	if err := writeTrajectory(w, traj); err != nil {
		return err
	}
	fmt.Fprintf(w, "Average return: %s\n", FormatRate(traj.AverageYield, 2))
	return nil
}

func writeScan(w io.Writer, sr *domain.ScenarioResult) error {
	total := sr.Completed
	fmt.Fprintf(w, "Successful runs: %d of %d (%s%%)\n", sr.Successful, total, sr.SuccessRate.StringFixed(1))
	fmt.Fprintf(w, "Lowest ending balance: %s\n", FormatWholeCurrency(sr.MinTerminalBalance))
	fmt.Fprintf(w, "Highest ending balance: %s\n", FormatWholeCurrency(sr.MaxTerminalBalance))
	if sr.Mode == domain.ModeMonteCarlo {
		fmt.Fprintf(w, "Seed: %d\n", sr.Seed)
	}
	writeAborted(w, sr)

	if sr.Mode == domain.ModeHistorical && len(sr.Trajectories) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Scenarios (sorted by worst to best):")
		for _, traj := range sr.Trajectories {
			fmt.Fprintf(w, "    years %d to %d, ending balance %s\n",
				traj.Provenance.StartYear, traj.Provenance.EndYear, FormatWholeCurrency(traj.TerminalBalance))
		}
	}

	worst := sr.Worst()
	if worst == nil {
		return nil
	}
	fmt.Fprintln(w)
	if sr.Mode == domain.ModeHistorical {
		fmt.Fprintf(w, "Worst result was years %d to %d\n", worst.Provenance.StartYear, worst.Provenance.EndYear)
	} else {
		fmt.Fprintf(w, "Worst result was trial %d\n", worst.Provenance.Trial)
	}
	if err := writeTrajectory(w, worst); err != nil {
		return err
	}
	fmt.Fprintf(w, "Average return: %s\n", FormatRate(worst.AverageYield, 2))
	return nil
}

func writeAborted(w io.Writer, sr *domain.ScenarioResult) {
	if len(sr.Aborted) == 0 {
		return
	}
	fmt.Fprintf(w, "Aborted runs: %d\n", len(sr.Aborted))
	for _, a := range sr.Aborted {
		if a.Provenance.StartYear != 0 {
			fmt.Fprintf(w, "    years %d to %d: %s\n", a.Provenance.StartYear, a.Provenance.EndYear, a.Err)
		} else {
			fmt.Fprintf(w, "    trial %d: %s\n", a.Provenance.Trial, a.Err)
		}
	}
}

// writeTrajectory prints the year-by-year table, marking the first retired year.
func writeTrajectory(w io.Writer, traj *domain.Trajectory) error {
	table := tablewriter.NewWriter(w)
	table.Header("Year", "Age", "Balance", "Expenses", "Income", "Tax", "Rate", "Draw", "Yield", "")

	retirePrinted, failPrinted := false, false
	for _, rec := range traj.Records {
		marker := ""
		if rec.Retired && !retirePrinted {
			marker = "Retired!"
			retirePrinted = true
		}
		if rec.Failed && !failPrinted {
			marker = "Depleted"
			failPrinted = true
		}
		if err := table.Append(
			intToString(rec.Year),
			intToString(rec.Age),
			FormatWholeCurrency(rec.Balance),
			rec.Expenses.StringFixed(0),
			rec.Income.StringFixed(0),
			rec.Tax.StringFixed(0),
			FormatRate(rec.MarginalRate, 0),
			FormatRate(rec.DrawRate, 2),
			FormatRate(rec.Yield, 2),
			marker,
		); err != nil {
			return err
		}
	}
	return table.Render()
}
