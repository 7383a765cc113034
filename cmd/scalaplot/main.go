// scalaplot plots speedup against core count from benchmark results.
//
// The default action (and the plot subcommand) reads the results CSV, groups rows by
// implementation and series key, and writes one scalabilite_<mode>_<impl>_<key>.png per
// series. summary prints the same series as a table; bench produces a results CSV by
// timing Monte Carlo π estimators over a plan of core counts, and worker serves the
// throws of the TCP MasterSocket estimator.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Blakeline-was-taken/prog-avancee/src/config"
	"github.com/Blakeline-was-taken/prog-avancee/src/logging"
)

var version = "dev"

// cli carries state shared by every subcommand.
type cli struct {
	configFile string
	logLevel   string
	logFile    string
	debug      bool
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	plot := &plotFlags{}
	rootCmd := &cobra.Command{
		Use:     "scalaplot",
		Short:   "Plot speedup vs. core count from benchmark results",
		Version: version,
		Long: `scalaplot reads benchmark timings from a CSV file and draws, for every
implementation and workload size, the measured speedup next to the ideal
speedup (linear for strong scaling, flat for weak scaling).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlot(cmd, plot)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&c.configFile, "config", "c", "", "config file (YAML)")
	pf.BoolVarP(&c.debug, "debug", "d", false, "enable debug logging")
	pf.StringVar(&c.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&c.logFile, "log-file", "", "log file path")

	addPlotFlags(rootCmd.Flags(), plot)

	rootCmd.AddCommand(newPlotCommand(c))
	rootCmd.AddCommand(newSummaryCommand(c))
	rootCmd.AddCommand(newBenchCommand(c))
	rootCmd.AddCommand(newWorkerCommand(c))
	return rootCmd
}

// setup loads configuration, applies global flag overrides and installs the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(c.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug = c.debug
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = c.logFile
	}
	logger, err := logging.New(cfg.EffectiveLogLevel(), cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logging.SetLogger(logger)
	c.cfg = cfg
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
