package main

import (
	"github.com/spf13/cobra"

	"github.com/Faultbox/partmesh/internal/export"
	"github.com/Faultbox/partmesh/internal/httpapi"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the exporter over HTTP",
		Long: `Serve the exporter over HTTP.

  POST /v1/export   body: scene bytes, returns STL
  POST /v1/inspect  body: scene bytes, returns JSON measurements
  GET  /healthz

Query parameters normalize, target_extent, unit_scale, format, up_axis and
name override the export section of the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults, err := export.FromConfig(a.cfg.Export)
			if err != nil {
				return err
			}
			return httpapi.New(a.cfg.Server, defaults, a.log).ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&a.flags.Addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
