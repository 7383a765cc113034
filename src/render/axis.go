package render

import (
	"math"
	"sort"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
)

// speedupTickTarget is roughly how many intervals the Y axis is split into.
const speedupTickTarget = 5

// niceStep picks a 1, 2, 2.5 or 5 multiple of a power of ten so that span splits into about n intervals.
func niceStep(span float64, n int) float64 {
	if span <= 0 || n < 1 {
		return 1
	}
	raw := span / float64(n)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, c := range []float64{1, 2, 2.5, 5} {
		if c*mag >= raw {
			return c * mag
		}
	}
	return 10 * mag
}

// FormatNumericTick gives a compact label: fewer decimals as magnitude grows.
func FormatNumericTick(v float64) string {
	av := math.Abs(v)
	switch {
	case av >= 100:
		return strconv.FormatInt(int64(math.Round(v)), 10)
	case av >= 10:
		return strconv.FormatFloat(v, 'f', 1, 64)
	case av >= 1:
		return strconv.FormatFloat(v, 'f', 2, 64)
	case av == 0:
		return "0"
	case av >= 0.01:
		return strconv.FormatFloat(v, 'f', 3, 64)
	default:
		return strconv.FormatFloat(v, 'f', 4, 64)
	}
}

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }

// speedupAxis returns a range anchored at 0 and evenly spaced ticks up to one step past
// the largest finite value in vals.
func speedupAxis(vals ...[]float64) (*chart.ContinuousRange, []chart.Tick) {
	maxY := 0.0
	for _, vs := range vals {
		for _, v := range vs {
			if !math.IsNaN(v) && !math.IsInf(v, 0) && v > maxY {
				maxY = v
			}
		}
	}
	if maxY <= 0 {
		maxY = 1
	}
	step := niceStep(maxY, speedupTickTarget)
	top := round6((math.Floor(maxY/step) + 1) * step)
	var ticks []chart.Tick
	for i := 0; ; i++ {
		v := round6(float64(i) * step)
		if v > top {
			break
		}
		ticks = append(ticks, chart.Tick{Value: v, Label: FormatNumericTick(v)})
	}
	return &chart.ContinuousRange{Min: 0, Max: top}, ticks
}

// coreAxis returns a padded range around the core counts with one labelled tick per
// distinct count. go-chart derives the axis range from the outermost ticks, so the padded
// bounds are carried as unlabelled ticks; a single core count would otherwise collapse
// the range to zero width.
func coreAxis(cores []int) (*chart.ContinuousRange, []chart.Tick) {
	if len(cores) == 0 {
		return &chart.ContinuousRange{Min: 0, Max: 1}, nil
	}
	minC, maxC := cores[0], cores[0]
	for _, c := range cores {
		minC = min(minC, c)
		maxC = max(maxC, c)
	}
	lo, hi := float64(minC), float64(maxC)
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	rng := &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
	seen := map[int]bool{}
	ticks := []chart.Tick{{Value: rng.Min}}
	for _, c := range cores {
		if seen[c] {
			continue
		}
		seen[c] = true
		ticks = append(ticks, chart.Tick{Value: float64(c), Label: strconv.Itoa(c)})
	}
	ticks = append(ticks, chart.Tick{Value: rng.Max})
	sort.SliceStable(ticks, func(i, j int) bool { return ticks[i].Value < ticks[j].Value })
	return rng, ticks
}
