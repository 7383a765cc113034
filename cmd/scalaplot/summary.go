package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Blakeline-was-taken/prog-avancee/src/analysis"
	"github.com/Blakeline-was-taken/prog-avancee/src/render"
)

func newSummaryCommand(c *cli) *cobra.Command {
	o := &plotFlags{}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print speedup and efficiency per series without rendering charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			o.apply(cmd.Flags(), cfg)
			ds, err := loadDataset(cfg)
			if err != nil {
				return err
			}
			return writeSummary(cmd.OutOrStdout(), ds)
		},
	}
	addPlotFlags(cmd.Flags(), o)
	return cmd
}

// writeSummary prints one table row per point, then any ordering or value warnings.
func writeSummary(out io.Writer, ds *analysis.Dataset) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "implementation\tkey\tcores\ttime_ms\tspeedup\tideal\tefficiency\t")
	var warnings []string
	err := ds.Each(func(s *analysis.Series) error {
		sp := s.Speedups()
		ideal := ds.Mode.Ideal(s.Cores)
		eff := analysis.Efficiency(ds.Mode, sp, s.Cores)
		for i := range s.Cores {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%.3f\t%s\t%.3f\t\n",
				s.Implementation, s.Key, s.Cores[i], render.FormatNumericTick(s.Times[i]), sp[i], render.FormatNumericTick(ideal[i]), eff[i])
		}
		warnings = append(warnings, s.Check()...)
		return nil
	})
	if err != nil {
		return err
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	return nil
}
