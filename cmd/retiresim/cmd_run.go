package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/rpgo/retirement-simulator/internal/output"
	"github.com/rpgo/retirement-simulator/internal/storage"
)

var modeDescriptions = map[string]string{
	"uniform":    "Run with the profile's expected returns every year",
	"historical": "Replay every historical sequence from the returns file",
	"montecarlo": "Run Monte Carlo trials sampled from the profile's return distribution",
}

func newModeCmd(a *app, name string) *cobra.Command {
	mode, _ := calculation.ParseMode(name)
	return newRunCmd(a, name, modeDescriptions[name], []domain.Mode{mode})
}

// newRunCmd builds a command that simulates a profile file in the given modes;
// nil modes means all of them.
func newRunCmd(a *app, use, short string, modes []domain.Mode) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <profile.yaml>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			saveDir, _ := cmd.Flags().GetString("save-dir")

			if output.GetFormatterByName(format) == nil {
				return fmt.Errorf("%w: %q", output.ErrUnsupportedFormat, format)
			}
			if len(modes) == 1 && modes[0] == domain.ModeHistorical && a.settings.Returns == "" {
				return fmt.Errorf("historical mode needs a returns file (--returns or RETIRESIM_RETURNS)")
			}

			profile, err := a.parser().LoadFromFile(args[0])
			if err != nil {
				return err
			}
			eng, err := a.engine()
			if err != nil {
				return err
			}
			report, err := eng.Run(cmd.Context(), profile, modes...)
			if err != nil {
				return err
			}

			if err := output.Render(cmd.OutOrStdout(), format, report); err != nil {
				return err
			}
			if saveDir != "" {
				name, err := output.GenerateReport(report, format, saveDir)
				if err != nil {
					return err
				}
				a.logger.Infof("report written to %s", name)
			}
			return a.saveRun(cmd.Context(), report)
		},
	}
	cmd.Flags().StringP("format", "f", "table", "Output format: table, csv, csv-summary, json, yaml")
	cmd.Flags().String("save-dir", "", "Also write the report to a timestamped file in this directory")
	return cmd
}

// saveRun records the report in the run history when a store is configured.
func (a *app) saveRun(ctx context.Context, report *domain.SimulationReport) error {
	if a.settings.Store == "" {
		return nil
	}
	store, err := storage.NewRunStore(a.settings.Store)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.SaveReport(ctx, report); err != nil {
		return err
	}
	a.logger.Debugf("run %s saved to %s", report.RunID, a.settings.Store)
	return nil
}
