package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Blakeline-was-taken/prog-avancee/src/analysis"
	"github.com/Blakeline-was-taken/prog-avancee/src/bench"
	"github.com/Blakeline-was-taken/prog-avancee/src/config"
	"github.com/Blakeline-was-taken/prog-avancee/src/logging"
)

func newBenchCommand(c *cli) *cobra.Command {
	def := config.DefaultConfig().Bench
	var (
		output  string
		plan    string
		mode    string
		cores   []int
		points  int
		tests   int
		impls   []string
		workers []string
		seed    uint64
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time Monte Carlo π estimators and write a results CSV",
		Long: `bench runs every selected estimator over a plan of (cores, points, tests)
and writes the averaged timings in the CSV schema read by plot. The plan comes
from --plan (cores,points,tests CSV) or from --cores/--points/--tests, where
--points is the total for strong scaling and the per-core share for weak scaling.
MasterSocket sends the throws to "scalaplot worker" processes listed in --workers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			f := cmd.Flags()
			if f.Changed("output") {
				cfg.Bench.Output = output
			}
			if f.Changed("plan") {
				cfg.Bench.Plan = plan
			}
			if f.Changed("mode") {
				cfg.Bench.Mode = mode
			}
			if f.Changed("cores") {
				cfg.Bench.Cores = cores
			}
			if f.Changed("points") {
				cfg.Bench.Points = points
			}
			if f.Changed("tests") {
				cfg.Bench.Tests = tests
			}
			if f.Changed("impl") {
				cfg.Bench.Implementations = impls
			}
			if f.Changed("workers") {
				cfg.Bench.Workers = workers
			}
			if err := cfg.ValidateBenchConfig(); err != nil {
				return err
			}
			estimators, err := bench.Select(cfg.Bench.Workers, cfg.Bench.Implementations...)
			if err != nil {
				return err
			}
			var entries []bench.PlanEntry
			if cfg.Bench.Plan != "" {
				if entries, err = bench.LoadPlan(cfg.Bench.Plan); err != nil {
					return err
				}
			} else {
				m, _ := analysis.ParseMode(cfg.Bench.Mode)
				entries = bench.BuildPlan(m, cfg.Bench.Cores, cfg.Bench.Points, cfg.Bench.Tests)
			}

			out, err := os.Create(cfg.Bench.Output)
			if err != nil {
				return fmt.Errorf("create results: %w", err)
			}
			defer out.Close()
			r := &bench.Runner{Estimators: estimators, Seed: seed}
			results, err := r.Run(cmd.Context(), entries, out)
			if err != nil {
				return fmt.Errorf("bench (%d row(s) written): %w", len(results), err)
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("close results: %w", err)
			}
			logging.Infof("Résultats enregistrés dans %s", cfg.Bench.Output)
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Bench.Output)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", def.Output, "results CSV to write")
	f.StringVar(&plan, "plan", def.Plan, "plan CSV (cores,points,tests); overrides --cores/--points/--tests")
	f.StringVarP(&mode, "mode", "m", def.Mode, "scaling mode used to build the plan: strong|weak")
	f.IntSliceVar(&cores, "cores", def.Cores, "core counts to benchmark")
	f.IntVar(&points, "points", def.Points, "total points (strong) or points per core (weak)")
	f.IntVar(&tests, "tests", def.Tests, "repetitions averaged per configuration")
	f.StringSliceVar(&impls, "impl", def.Implementations, fmt.Sprintf("implementations to run %v, or %s with --workers", bench.Names(), bench.NameSocket))
	f.StringSliceVar(&workers, "workers", def.Workers, "host:port of running workers for "+bench.NameSocket)
	f.Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}
