package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/partmesh/internal/export"
)

// exportFlags holds the per-export overrides shared by export and inspect.
type exportFlags struct {
	normalize    bool
	targetExtent float64
	unitScale    float64
	format       string
	upAxis       string
	name         string
	noRepair     bool
}

func (f *exportFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&f.normalize, "normalize", false, "center and scale to the display extent")
	fs.Float64Var(&f.targetExtent, "target-extent", export.DefaultTargetExtent, "largest extent after --normalize")
	fs.Float64Var(&f.unitScale, "unit-scale", export.DefaultUnitScale, "multiply output coordinates (e.g. 1000 for metres to millimetres)")
	fs.StringVar(&f.format, "format", string(export.FormatSTL), "output format: stl, stl-binary")
	fs.StringVar(&f.upAxis, "up-axis", string(export.UpAxisY), "output up axis: y, z")
	fs.StringVar(&f.name, "name", "", "solid name written into the STL")
	fs.BoolVar(&f.noRepair, "no-repair", false, "skip the structural repair pass")
}

// options starts from the config file and applies flags that were set.
func (f *exportFlags) options(a *app, cmd *cobra.Command) (export.Options, error) {
	opts, err := export.FromConfig(a.cfg.Export)
	if err != nil {
		return opts, err
	}
	fs := cmd.Flags()
	if fs.Changed("normalize") {
		opts.ApplyDisplayNormalization = f.normalize
	}
	if fs.Changed("target-extent") {
		opts.TargetExtent = f.targetExtent
	}
	if fs.Changed("unit-scale") {
		opts.UnitScale = f.unitScale
	}
	if fs.Changed("format") {
		if opts.Format, err = export.ParseFormat(f.format); err != nil {
			return opts, err
		}
	}
	if fs.Changed("up-axis") {
		if opts.UpAxis, err = export.ParseUpAxis(f.upAxis); err != nil {
			return opts, err
		}
	}
	if fs.Changed("name") {
		opts.SolidName = f.name
	}
	if fs.Changed("no-repair") {
		opts.SkipRepair = f.noRepair
	}
	return opts, nil
}

func newExportCmd(a *app) *cobra.Command {
	var (
		flags  exportFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "export <scene.glb|scene.gltf>",
		Short: "Convert a scene to STL",
		Long: `Convert a scene to STL.

The scene is repaired, validated and flattened into world space. With
--normalize the mesh is centred and scaled exactly as the viewer displays it.
The STL is written to stdout unless -o is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(a, cmd)
			if err != nil {
				return err
			}
			res, err := export.ExportFile(cmd.Context(), args[0], opts, a.log)
			if err != nil {
				return err
			}
			if err := writeOutput(cmd.OutOrStdout(), output, res.Data); err != nil {
				return err
			}
			a.log.Info("wrote mesh",
				zap.String("input", args[0]),
				zap.String("output", outputName(output)),
				zap.Int("triangles", res.TriangleCount),
				zap.Strings("warnings", res.Warnings))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func outputName(path string) string {
	if path == "" || path == "-" {
		return "stdout"
	}
	return path
}
