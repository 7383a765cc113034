package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Mode selects how rows are grouped into series and which ideal curve applies.
type Mode int

const (
	// Strong scaling: fixed total workload, ideal speedup equals the core count.
	Strong Mode = iota
	// Weak scaling: fixed workload per core, ideal speedup stays at 1.
	Weak
)

var ErrUnknownMode = errors.New("unknown scaling mode")

// ParseMode accepts strong|weak and the French forte|faible.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strong", "forte":
		return Strong, nil
	case "weak", "faible":
		return Weak, nil
	}
	return Strong, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m Mode) String() string {
	if m == Weak {
		return "weak"
	}
	return "strong"
}

// FileLabel is the mode name used in output file names.
func (m Mode) FileLabel() string {
	if m == Weak {
		return "faible"
	}
	return "forte"
}

// SeriesKey returns the grouping key of a measurement: total points for strong scaling,
// points per core (floored integer division) for weak scaling. Zero cores cannot be
// keyed under weak scaling.
func (m Mode) SeriesKey(r Measurement) (int, error) {
	if m != Weak {
		return r.PointsLaunched, nil
	}
	if r.Cores == 0 {
		return 0, fmt.Errorf("%w: line %d: zero cores cannot key a weak scaling series", ErrInvalidValue, r.Line)
	}
	return floorDiv(r.PointsLaunched, r.Cores), nil
}

// floorDiv rounds the quotient towards negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Ideal returns the ideal speedup curve for the given core counts.
func (m Mode) Ideal(cores []int) []float64 {
	out := make([]float64, len(cores))
	for i, c := range cores {
		if m == Weak {
			out[i] = 1
		} else {
			out[i] = float64(c)
		}
	}
	return out
}

// Measurement is one CSV row.
type Measurement struct {
	Implementation string
	PointsLaunched int
	Cores          int
	ExecTimeMs     float64
	// Line is the 1-based line number in the source file (0 when not read from a file).
	Line int
}

// Series holds the parallel core/time sequences of one (implementation, key) group,
// in the order the rows were read.
type Series struct {
	Implementation string
	Key            int
	Cores          []int
	Times          []float64
}

// Len returns the number of points in the series.
func (s *Series) Len() int { return len(s.Cores) }

// Speedups returns times[0]/times[i] for the series.
func (s *Series) Speedups() []float64 { return Speedup(s.Times) }

// Baseline returns the first row of the series, which every speedup is relative to.
func (s *Series) Baseline() (cores int, timeMs float64) {
	if len(s.Cores) == 0 {
		return 0, math.NaN()
	}
	return s.Cores[0], s.Times[0]
}

// Check reports input-ordering and value anomalies that make the speedups misleading.
// None of them stop plotting.
func (s *Series) Check() []string {
	var warns []string
	if len(s.Cores) == 0 {
		return warns
	}
	if s.Cores[0] != 1 {
		warns = append(warns, fmt.Sprintf("%s/%d: baseline row uses %d cores, not 1", s.Implementation, s.Key, s.Cores[0]))
	}
	for i := 1; i < len(s.Cores); i++ {
		if s.Cores[i] < s.Cores[i-1] {
			warns = append(warns, fmt.Sprintf("%s/%d: cores not ascending at index %d (%d after %d)", s.Implementation, s.Key, i, s.Cores[i], s.Cores[i-1]))
			break
		}
	}
	for i, t := range s.Times {
		if !(t > 0) {
			warns = append(warns, fmt.Sprintf("%s/%d: non-positive execution time %v at index %d", s.Implementation, s.Key, t, i))
		}
	}
	return warns
}

// sortByCores reorders the series ascending by core count, keeping file order for ties.
func (s *Series) sortByCores() {
	idx := make([]int, len(s.Cores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return s.Cores[idx[a]] < s.Cores[idx[b]] })
	cores := make([]int, len(idx))
	times := make([]float64, len(idx))
	for i, j := range idx {
		cores[i] = s.Cores[j]
		times[i] = s.Times[j]
	}
	s.Cores, s.Times = cores, times
}

// Implementation groups the series of one implementation in first-seen key order.
type Implementation struct {
	Name   string
	Series []*Series
}

// Dataset is the grouped input: implementations and their series in first-seen order.
type Dataset struct {
	Mode            Mode
	Implementations []*Implementation
}

// Len returns the total number of series.
func (d *Dataset) Len() int {
	n := 0
	for _, impl := range d.Implementations {
		n += len(impl.Series)
	}
	return n
}

// Each calls fn for every series in order and stops at the first error.
func (d *Dataset) Each(fn func(*Series) error) error {
	for _, impl := range d.Implementations {
		for _, s := range impl.Series {
			if err := fn(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// Find returns the series for (impl, key) or nil.
func (d *Dataset) Find(impl string, key int) *Series {
	for _, im := range d.Implementations {
		if im.Name != impl {
			continue
		}
		for _, s := range im.Series {
			if s.Key == key {
				return s
			}
		}
	}
	return nil
}

// GroupOptions tunes Group.
type GroupOptions struct {
	// SortByCores sorts each series ascending by cores; by default file order is kept.
	SortByCores bool
}

// Group buckets measurements by implementation and series key.
func Group(rows []Measurement, mode Mode, opts GroupOptions) (*Dataset, error) {
	ds := &Dataset{Mode: mode}
	implIdx := map[string]*Implementation{}
	seriesIdx := map[string]map[int]*Series{}
	for _, r := range rows {
		impl, ok := implIdx[r.Implementation]
		if !ok {
			impl = &Implementation{Name: r.Implementation}
			implIdx[r.Implementation] = impl
			seriesIdx[r.Implementation] = map[int]*Series{}
			ds.Implementations = append(ds.Implementations, impl)
		}
		key, err := mode.SeriesKey(r)
		if err != nil {
			return nil, err
		}
		s, ok := seriesIdx[r.Implementation][key]
		if !ok {
			s = &Series{Implementation: r.Implementation, Key: key}
			seriesIdx[r.Implementation][key] = s
			impl.Series = append(impl.Series, s)
		}
		s.Cores = append(s.Cores, r.Cores)
		s.Times = append(s.Times, r.ExecTimeMs)
	}
	if opts.SortByCores {
		_ = ds.Each(func(s *Series) error {
			s.sortByCores()
			return nil
		})
	}
	return ds, nil
}

// Speedup divides the first time by every time: out[i] = times[0]/times[i].
// A zero time yields +Inf (or NaN for 0/0); no guard is applied.
func Speedup(times []float64) []float64 {
	out := make([]float64, len(times))
	if len(times) == 0 {
		return out
	}
	for i := range out {
		out[i] = times[0]
	}
	floats.Div(out, times)
	return out
}

// Efficiency relates speedups to the ideal curve: speedup/cores for strong scaling,
// the speedup itself for weak scaling (ideal 1).
func Efficiency(mode Mode, speedups []float64, cores []int) []float64 {
	out := make([]float64, len(speedups))
	copy(out, speedups)
	if mode == Weak {
		return out
	}
	floats.Div(out, mode.Ideal(cores))
	return out
}
