package bench

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// cancelCheckEvery is how many throws a worker makes between context checks.
const cancelCheckEvery = 1 << 16

// Estimator approximates π by throwing points at the unit square on a number of workers.
type Estimator interface {
	Name() string
	Estimate(ctx context.Context, totalPoints, cores int, seed uint64) (float64, error)
}

// Estimator names match the ones written by the original Java harness so result files
// from both can be plotted side by side.
const (
	NameMasterWorker  = "Pi.java"
	NameSharedCounter = "Assignment102"
)

var registry = map[string]Estimator{
	NameMasterWorker:  MasterWorker{},
	NameSharedCounter: SharedCounter{},
}

// Names lists the registered estimators.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the estimators with the given names, in order.
func Lookup(names ...string) ([]Estimator, error) {
	out := make([]Estimator, 0, len(names))
	for _, n := range names {
		e, ok := registry[n]
		if !ok {
			return nil, fmt.Errorf("unknown implementation %q (known: %v)", n, Names())
		}
		out = append(out, e)
	}
	return out, nil
}

func validate(totalPoints, cores int) error {
	if cores <= 0 {
		return fmt.Errorf("cores must be > 0, got %d", cores)
	}
	if totalPoints < cores {
		return fmt.Errorf("need at least one point per core: points=%d cores=%d", totalPoints, cores)
	}
	return nil
}

func newRand(seed uint64, worker int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(worker)+1))
}

// throw runs n throws and calls hit for every point inside the quarter circle.
func throw(ctx context.Context, r *rand.Rand, n int, hit func()) error {
	for i := 0; i < n; i++ {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		x, y := r.Float64(), r.Float64()
		if x*x+y*y <= 1 {
			hit()
		}
	}
	return nil
}

// MasterWorker gives each worker total/cores throws; workers report their own hit
// count to the master over a channel.
type MasterWorker struct{}

func (MasterWorker) Name() string { return NameMasterWorker }

func (MasterWorker) Estimate(ctx context.Context, totalPoints, cores int, seed uint64) (float64, error) {
	if err := validate(totalPoints, cores); err != nil {
		return 0, err
	}
	perWorker := totalPoints / cores
	type report struct {
		hits int64
		err  error
	}
	reports := make(chan report, cores)
	for w := 0; w < cores; w++ {
		go func(workerID int) {
			var hits int64
			err := throw(ctx, newRand(seed, workerID), perWorker, func() { hits++ })
			reports <- report{hits: hits, err: err}
		}(w)
	}
	var total int64
	var firstErr error
	for i := 0; i < cores; i++ {
		r := <-reports
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
		total += r.hits
	}
	if firstErr != nil {
		return 0, firstErr
	}
	return 4 * float64(total) / float64(perWorker*cores), nil
}

// SharedCounter splits the throws across workers which all increment one atomic counter.
type SharedCounter struct{}

func (SharedCounter) Name() string { return NameSharedCounter }

func (SharedCounter) Estimate(ctx context.Context, totalPoints, cores int, seed uint64) (float64, error) {
	if err := validate(totalPoints, cores); err != nil {
		return 0, err
	}
	var hits atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	base, extra := totalPoints/cores, totalPoints%cores
	for w := 0; w < cores; w++ {
		n := base
		if w < extra {
			n++
		}
		g.Go(func() error {
			return throw(gctx, newRand(seed, w), n, func() { hits.Add(1) })
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return 4 * float64(hits.Load()) / float64(totalPoints), nil
}
