package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"buckettool/internal/api"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the detection API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr()
			}
			srv := api.NewServer(a.detector(), a.recorder(), a.cfg.Server.Mode)
			pterm.Info.Printfln("API listening on http://%s", addr)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
