// Package main is the entry point for the cubes demo: an orbit camera flying around a grid of
// instanced cubes rendered with WebGPU.
package main

import (
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-cubes/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	cfgPath string
	verbose bool
	log     zerolog.Logger
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cubes",
		Short: "Instanced cubes with an orbit camera",
		Long: `cubes renders a grid of instanced, colour-animated cubes and flies an orbit camera around it.

Open a window:        cubes run
Step frames headless: cubes simulate --frames 120 --input forward,left
Effective config:     cubes config`,
		PersistentPreRunE: initLogging,
		SilenceUsage:      true,
		RunE:              runWindowed,
	}

	// Global flags
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default ./config.yaml or ~/.oxy-cubes/config.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("cubes v%s\n", version)
		},
	})
	root.AddCommand(runCmd())
	root.AddCommand(simulateCmd())
	root.AddCommand(configCmd())

	return root
}

func initLogging(cmd *cobra.Command, args []string) error {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
	return nil
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
