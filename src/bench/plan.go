package bench

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Blakeline-was-taken/prog-avancee/src/analysis"
)

// ErrPlan is returned for malformed plan files.
var ErrPlan = errors.New("invalid plan")

// PlanEntry is one benchmark configuration.
type PlanEntry struct {
	Cores       int
	TotalPoints int
	Tests       int
}

// PointsPerCore is the integer share of points each core throws.
func (p PlanEntry) PointsPerCore() int { return p.TotalPoints / p.Cores }

// BuildPlan derives a plan from a core list. For strong scaling points is the fixed total;
// for weak scaling it is the per-core share and the total grows with the core count.
func BuildPlan(mode analysis.Mode, cores []int, points, tests int) []PlanEntry {
	out := make([]PlanEntry, 0, len(cores))
	for _, c := range cores {
		total := points
		if mode == analysis.Weak {
			total = points * c
		}
		out = append(out, PlanEntry{Cores: c, TotalPoints: total, Tests: tests})
	}
	return out
}

// LoadPlan reads a cores,points,tests CSV (header row skipped).
func LoadPlan(path string) ([]PlanEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plan: %w", err)
	}
	defer f.Close()
	return ReadPlan(f)
}

// ReadPlan parses plan entries from r. Columns are positional: cores, total points, tests.
func ReadPlan(r io.Reader) ([]PlanEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty plan", ErrPlan)
		}
		return nil, fmt.Errorf("read plan header: %w", err)
	}
	var out []PlanEntry
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read plan: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) < 3 {
			return nil, fmt.Errorf("%w: line %d has %d fields, need 3", ErrPlan, line, len(rec))
		}
		var vals [3]int
		for i := range vals {
			v, err := strconv.Atoi(strings.TrimSpace(rec[i]))
			if err != nil || v <= 0 {
				return nil, fmt.Errorf("%w: line %d field %d: %q", ErrPlan, line, i+1, rec[i])
			}
			vals[i] = v
		}
		out = append(out, PlanEntry{Cores: vals[0], TotalPoints: vals[1], Tests: vals[2]})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrPlan)
	}
	return out, nil
}
