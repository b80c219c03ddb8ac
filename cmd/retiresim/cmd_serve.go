package main

import (
	"github.com/spf13/cobra"

	"github.com/rpgo/retirement-simulator/internal/server"
	"github.com/rpgo/retirement-simulator/internal/storage"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve simulations over HTTP",
		Long: `Serve exposes POST /simulate (profile as JSON or YAML body, optional
?mode= and ?format= query parameters), GET /runs and GET /healthz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := a.settings.Addr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}
			eng, err := a.engine()
			if err != nil {
				return err
			}

			var store *storage.RunStore
			if a.settings.Store != "" {
				if store, err = storage.NewRunStore(a.settings.Store); err != nil {
					return err
				}
				defer store.Close()
			}

			opts := server.DefaultOptions()
			opts.RatePerSecond, _ = cmd.Flags().GetFloat64("rate")
			opts.Burst, _ = cmd.Flags().GetInt("burst")
			opts.Logger = a.logger
			return server.New(eng, a.parser(), store, opts).ListenAndServe(addr)
		},
	}
	defaults := server.DefaultOptions()
	cmd.Flags().String("addr", ":8080", "Listen address (env RETIRESIM_ADDR)")
	cmd.Flags().Float64("rate", defaults.RatePerSecond, "Simulations per second, 0 for unlimited")
	cmd.Flags().Int("burst", defaults.Burst, "Simulation burst size")
	return cmd
}
