package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Blakeline-was-taken/prog-avancee/src/analysis"
	"github.com/Blakeline-was-taken/prog-avancee/src/config"
	"github.com/Blakeline-was-taken/prog-avancee/src/logging"
	"github.com/Blakeline-was-taken/prog-avancee/src/render"
	"github.com/Blakeline-was-taken/prog-avancee/src/viewer"
)

type plotFlags struct {
	input       string
	mode        string
	outputDir   string
	interactive bool
	sortByCores bool
	noCaption   bool
	width       int
	height      int
}

func addPlotFlags(f *pflag.FlagSet, o *plotFlags) {
	def := config.DefaultConfig().Plot
	f.StringVarP(&o.input, "input", "i", def.Input, "results CSV file")
	f.StringVarP(&o.mode, "mode", "m", def.Mode, "scaling mode: strong|weak (forte|faible)")
	f.StringVarP(&o.outputDir, "output-dir", "o", def.OutputDir, "directory for the PNG files")
	f.BoolVar(&o.interactive, "interactive", def.Interactive, "show each chart in a window and wait for it to be dismissed")
	f.BoolVar(&o.sortByCores, "sort", def.SortByCores, "sort each series by core count instead of keeping file order")
	f.BoolVar(&o.noCaption, "no-caption", !def.Caption, "do not stamp the baseline caption on charts")
	f.IntVar(&o.width, "width", def.Width, "chart width in pixels")
	f.IntVar(&o.height, "height", def.Height, "chart height in pixels")
}

// apply overrides cfg with the flags the user actually set.
func (o *plotFlags) apply(f *pflag.FlagSet, cfg *config.Config) {
	if f.Changed("input") {
		cfg.Plot.Input = o.input
	}
	if f.Changed("mode") {
		cfg.Plot.Mode = o.mode
	}
	if f.Changed("output-dir") {
		cfg.Plot.OutputDir = o.outputDir
	}
	if f.Changed("interactive") {
		cfg.Plot.Interactive = o.interactive
	}
	if f.Changed("sort") {
		cfg.Plot.SortByCores = o.sortByCores
	}
	if f.Changed("no-caption") {
		cfg.Plot.Caption = !o.noCaption
	}
	if f.Changed("width") {
		cfg.Plot.Width = o.width
	}
	if f.Changed("height") {
		cfg.Plot.Height = o.height
	}
}

func newPlotCommand(c *cli) *cobra.Command {
	o := &plotFlags{}
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render one speedup chart per (implementation, series key)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlot(cmd, o)
		},
	}
	addPlotFlags(cmd.Flags(), o)
	return cmd
}

// loadDataset reads and groups the configured results file.
func loadDataset(cfg *config.Config) (*analysis.Dataset, error) {
	mode, err := analysis.ParseMode(cfg.Plot.Mode)
	if err != nil {
		return nil, err
	}
	rows, err := analysis.LoadCSV(cfg.Plot.Input, cfg.Plot.ColumnNames())
	if err != nil {
		return nil, err
	}
	ds, err := analysis.Group(rows, mode, analysis.GroupOptions{SortByCores: cfg.Plot.SortByCores})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Plot.Input, err)
	}
	logging.Infof("loaded %d rows from %s: %d implementation(s), %d series (%s scaling)", len(rows), cfg.Plot.Input, len(ds.Implementations), ds.Len(), mode)
	return ds, nil
}

func (c *cli) runPlot(cmd *cobra.Command, o *plotFlags) error {
	cfg := c.cfg
	o.apply(cmd.Flags(), cfg)
	if err := cfg.ValidatePlotConfig(); err != nil {
		return err
	}
	ds, err := loadDataset(cfg)
	if err != nil {
		return err
	}
	opts := render.Options{
		OutputDir: cfg.Plot.OutputDir,
		Width:     cfg.Plot.Width,
		Height:    cfg.Plot.Height,
		Caption:   cfg.Plot.Caption,
	}
	var written []string
	work := func(ctx context.Context, v render.Viewer) error {
		var err error
		written, err = render.Run(ctx, ds, opts, v)
		return err
	}
	if cfg.Plot.Interactive {
		err = viewer.Run(cmd.Context(), work)
		if errors.Is(err, viewer.ErrClosed) {
			logging.Infof("viewer closed after %d of %d chart(s)", len(written), ds.Len())
			err = nil
		}
	} else {
		err = work(cmd.Context(), render.Headless{})
	}
	if err != nil {
		return fmt.Errorf("plot (%d file(s) written before failure): %w", len(written), err)
	}
	for _, p := range written {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
