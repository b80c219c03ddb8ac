package main

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rpgo/retirement-simulator/internal/calculation"
	"github.com/rpgo/retirement-simulator/internal/output"
	"github.com/rpgo/retirement-simulator/internal/storage"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List stored runs, or print a run's worst trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.settings.Store == "" {
				return errors.New("history needs a store (--store or RETIRESIM_STORE)")
			}
			store, err := storage.NewRunStore(a.settings.Store)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				modeName, _ := cmd.Flags().GetString("mode")
				mode, err := calculation.ParseMode(modeName)
				if err != nil {
					return err
				}
				traj, err := store.GetWorstTrajectory(cmd.Context(), args[0], mode)
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(traj, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			limit, _ := cmd.Flags().GetInt("limit")
			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs stored")
				return nil
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Run", "Household", "Generated", "Mode", "Success", "Lowest", "Highest")
			for _, r := range runs {
				for _, m := range r.Modes {
					if err := table.Append(
						r.RunID,
						r.ProfileName,
						r.GeneratedAt.Local().Format("2006-01-02 15:04"),
						string(m.Mode),
						fmt.Sprintf("%d/%d (%s)", m.Successful, m.Completed, output.FormatPercentage(m.SuccessRate)),
						output.FormatWholeCurrency(m.MinTerminalBalance),
						output.FormatWholeCurrency(m.MaxTerminalBalance),
					); err != nil {
						return err
					}
				}
			}
			return table.Render()
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum runs to list, 0 for all")
	cmd.Flags().String("mode", "historical", "Mode whose worst trajectory to print")
	return cmd
}
