package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Faultbox/partmesh/internal/export"
)

func newInspectCmd(a *app) *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "inspect <scene.glb|scene.gltf>",
		Short: "Print bounds, normalization and mesh measurements as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(a, cmd)
			if err != nil {
				return err
			}
			res, err := export.ExportFile(cmd.Context(), args[0], opts, a.log)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	flags.register(cmd)
	return cmd
}
