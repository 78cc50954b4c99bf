package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/partmesh/internal/config"
	"github.com/Faultbox/partmesh/internal/logger"
)

// app is the state shared by every command, filled in before a command
// runs.
type app struct {
	flags config.Flags
	cfg   *config.Config
	log   *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "partmesh",
		Short:         "Export generated 3D scenes as STL meshes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.ConfigPath, "config", "", "path to config file")
	pf.BoolVar(&a.flags.Debug, "debug", false, "enable debug logging")
	pf.StringVar(&a.flags.LogFile, "log-file", "", "also write logs to this file (rotated)")

	root.AddCommand(newExportCmd(a))
	root.AddCommand(newInspectCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newConfigCmd(a))
	return root
}

// init loads configuration and installs the global logger.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags)
	if err != nil {
		return err
	}
	a.cfg = cfg

	lc := cfg.Logging
	fileCfg := logger.FileConfig{}
	if lc.LogFile != "" {
		fileCfg = logger.FileConfig{
			Path:       lc.LogFile,
			MaxSizeMB:  lc.MaxSizeMB,
			MaxBackups: lc.MaxBackups,
			MaxAgeDays: lc.MaxAgeDays,
			Compress:   lc.Compress,
		}
	}
	err = logger.InitWithOptions(logger.Options{
		Level:    lc.Level,
		Encoding: lc.Encoding,
		Console:  zapcore.AddSync(cmd.ErrOrStderr()),
		File:     fileCfg,
	})
	if err != nil {
		return err
	}
	a.log = logger.Log
	return nil
}
