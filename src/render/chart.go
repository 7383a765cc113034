package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Blakeline-was-taken/prog-avancee/src/analysis"
)

// Default chart size: 6x6 inches at 100 dpi.
const (
	DefaultWidth  = 600
	DefaultHeight = 600
	chartDPI      = 100
)

var (
	measuredColor = drawing.Color{R: 31, G: 119, B: 180, A: 255}
	idealColor    = drawing.ColorRed
	gridColor     = drawing.Color{R: 220, G: 220, B: 220, A: 255}
)

// Options controls chart size, captioning and where files go.
type Options struct {
	OutputDir string
	Width     int
	Height    int
	// Caption stamps the baseline (cores, time) at the bottom of every chart.
	Caption bool
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

func perWorker(mode analysis.Mode) string {
	if mode == analysis.Weak {
		return " par worker"
	}
	return ""
}

// SeriesLabel is the legend entry of the measured curve.
func SeriesLabel(mode analysis.Mode, s *analysis.Series) string {
	return fmt.Sprintf("%d points%s", s.Key, perWorker(mode))
}

// Title is the chart title for a series.
func Title(mode analysis.Mode, s *analysis.Series) string {
	return fmt.Sprintf("Speedup pour %d points%s sur %s", s.Key, perWorker(mode), s.Implementation)
}

// FileName returns scalabilite_{forte|faible}_{impl}_{key}.png. Path separators in the
// implementation name are replaced so the file always lands in the output directory.
func FileName(mode analysis.Mode, s *analysis.Series) string {
	impl := strings.NewReplacer("/", "_", "\\", "_").Replace(s.Implementation)
	return fmt.Sprintf("scalabilite_%s_%s_%d.png", mode.FileLabel(), impl, s.Key)
}

// finitePoints keeps the (x,y) pairs whose y is a finite number.
func finitePoints(cores []int, ys []float64) (xs, out []float64, dropped int) {
	for i, y := range ys {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			dropped++
			continue
		}
		xs = append(xs, float64(cores[i]))
		out = append(out, y)
	}
	return xs, out, dropped
}

func toFloats(cores []int) []float64 {
	out := make([]float64, len(cores))
	for i, c := range cores {
		out[i] = float64(c)
	}
	return out
}

// Chart renders the measured speedup of s against the ideal curve for mode.
// It also returns how many measured points were left out for being non-finite.
func Chart(mode analysis.Mode, s *analysis.Series, opts Options) (image.Image, int, error) {
	if s == nil || s.Len() == 0 {
		return nil, 0, fmt.Errorf("render: empty series")
	}
	speedups := s.Speedups()
	ideal := mode.Ideal(s.Cores)

	series := []chart.Series{}
	xs, ys, dropped := finitePoints(s.Cores, speedups)
	if len(xs) > 0 {
		series = append(series, chart.ContinuousSeries{
			Name: SeriesLabel(mode, s),
			Style: chart.Style{
				StrokeColor: measuredColor,
				StrokeWidth: 2,
				DotColor:    measuredColor,
				DotWidth:    4,
			},
			XValues: xs,
			YValues: ys,
		})
	}
	series = append(series, chart.ContinuousSeries{
		Name: "Speedup idéal",
		Style: chart.Style{
			StrokeColor:     idealColor,
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{6, 4},
		},
		XValues: toFloats(s.Cores),
		YValues: ideal,
	})

	xRange, xTicks := coreAxis(s.Cores)
	yRange, yTicks := speedupAxis(ys, ideal)
	grid := chart.Style{StrokeColor: gridColor, StrokeWidth: 1}

	padBottom := 16
	if opts.Caption {
		padBottom += captionHeight
	}
	w, h := opts.size()
	ch := chart.Chart{
		Title:      Title(mode, s),
		Width:      w,
		Height:     h,
		DPI:        chartDPI,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 20, Bottom: padBottom}},
		XAxis: chart.XAxis{
			Name:           "Nombre de cœurs",
			Range:          xRange,
			Ticks:          xTicks,
			GridMajorStyle: grid,
			GridMinorStyle: grid,
		},
		YAxis: chart.YAxis{
			Name:           "Speedup",
			Range:          yRange,
			Ticks:          yTicks,
			GridMajorStyle: grid,
			GridMinorStyle: grid,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, dropped, fmt.Errorf("render %s: %w", FileName(mode, s), err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, dropped, fmt.Errorf("decode %s: %w", FileName(mode, s), err)
	}
	if opts.Caption {
		c, t := s.Baseline()
		img = drawCaption(img, fmt.Sprintf("reference: %d coeur(s), %s ms", c, FormatNumericTick(t)))
	}
	return img, dropped, nil
}
