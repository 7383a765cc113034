package bench

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/Blakeline-was-taken/prog-avancee/src/logging"
)

// Header is the results CSV header read back by the plotter.
var Header = []string{
	"Implémentation",
	"Nombre de coeurs",
	"Points lancés",
	"Points par coeur",
	"Temps d'exécution (ms)",
	"Approximation de PI",
	"Erreur",
	"Nombre de tests",
}

// Result is the averaged outcome of one plan entry for one estimator.
type Result struct {
	Implementation string
	Cores          int
	TotalPoints    int
	PointsPerCore  int
	MeanTimeMs     float64
	MeanPi         float64
	RelError       float64
	Tests          int
}

func (r Result) record() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		r.Implementation,
		strconv.Itoa(r.Cores),
		strconv.Itoa(r.TotalPoints),
		strconv.Itoa(r.PointsPerCore),
		f(r.MeanTimeMs),
		f(r.MeanPi),
		f(r.RelError),
		strconv.Itoa(r.Tests),
	}
}

// Runner times estimators over a plan.
type Runner struct {
	Estimators []Estimator
	// Seed makes runs reproducible; each test uses Seed+test.
	Seed uint64
	// now is swapped in tests.
	now func() time.Time
}

func (r *Runner) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// Run executes every estimator over every plan entry and writes one CSV row per pair to w,
// flushing after each row so partial results survive an aborted run.
func (r *Runner) Run(ctx context.Context, plan []PlanEntry, w io.Writer) ([]Result, error) {
	defer logging.TimeTrack(time.Now(), "bench")
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	cw.Flush()
	var results []Result
	for _, est := range r.Estimators {
		for _, p := range plan {
			res, err := r.runEntry(ctx, est, p)
			if err != nil {
				return results, err
			}
			if err := cw.Write(res.record()); err != nil {
				return results, fmt.Errorf("write result: %w", err)
			}
			cw.Flush()
			if err := cw.Error(); err != nil {
				return results, fmt.Errorf("flush result: %w", err)
			}
			results = append(results, res)
			logging.Infof("[bench] %s cores=%d points=%d time=%.2fms pi=%.6f err=%.2e", res.Implementation, res.Cores, res.TotalPoints, res.MeanTimeMs, res.MeanPi, res.RelError)
		}
	}
	return results, nil
}

func (r *Runner) runEntry(ctx context.Context, est Estimator, p PlanEntry) (Result, error) {
	tests := p.Tests
	if tests <= 0 {
		tests = 1
	}
	times := make([]float64, tests)
	pis := make([]float64, tests)
	for t := 0; t < tests; t++ {
		logging.Debugf("[bench] test=%d impl=%s points=%d cores=%d", t, est.Name(), p.TotalPoints, p.Cores)
		start := r.clock()
		pi, err := est.Estimate(ctx, p.TotalPoints, p.Cores, r.Seed+uint64(t))
		if err != nil {
			return Result{}, fmt.Errorf("%s cores=%d points=%d: %w", est.Name(), p.Cores, p.TotalPoints, err)
		}
		times[t] = float64(r.clock().Sub(start).Microseconds()) / 1000
		pis[t] = pi
	}
	meanPi := stat.Mean(pis, nil)
	return Result{
		Implementation: est.Name(),
		Cores:          p.Cores,
		TotalPoints:    p.TotalPoints,
		PointsPerCore:  p.PointsPerCore(),
		MeanTimeMs:     stat.Mean(times, nil),
		MeanPi:         meanPi,
		RelError:       math.Abs(meanPi-math.Pi) / math.Pi,
		Tests:          tests,
	}, nil
}
