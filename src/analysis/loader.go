package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("missing column")
	// ErrParse is returned when a numeric field cannot be parsed.
	ErrParse = errors.New("parse error")
	// ErrInvalidValue is returned when a row cannot be keyed, e.g. zero cores under weak scaling.
	ErrInvalidValue = errors.New("invalid value")
)

// Columns names the header of each required field.
type Columns struct {
	Implementation string
	Points         string
	Cores          string
	Time           string
}

// DefaultColumns returns the headers written by the benchmark harness.
func DefaultColumns() Columns {
	return Columns{
		Implementation: "Implémentation",
		Points:         "Points lancés",
		Cores:          "Nombre de coeurs",
		Time:           "Temps d'exécution (ms)",
	}
}

type columnIndex struct {
	impl, points, cores, time int
}

func (c Columns) index(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		// A repeated header resolves to its last column.
		pos[h] = i
	}
	lookup := func(name string) (int, error) {
		i, ok := pos[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		return i, nil
	}
	var idx columnIndex
	var err error
	if idx.impl, err = lookup(c.Implementation); err != nil {
		return idx, err
	}
	if idx.points, err = lookup(c.Points); err != nil {
		return idx, err
	}
	if idx.cores, err = lookup(c.Cores); err != nil {
		return idx, err
	}
	if idx.time, err = lookup(c.Time); err != nil {
		return idx, err
	}
	return idx, nil
}

// LoadCSV reads measurements from a CSV file with a header row.
func LoadCSV(path string, cols Columns) ([]Measurement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results: %w", err)
	}
	defer f.Close()
	rows, err := ReadCSV(f, cols)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// ReadCSV parses measurements from r. The first record is the header; columns are
// matched by name so their order does not matter. Any malformed row aborts the read.
func ReadCSV(r io.Reader, cols Columns) ([]Measurement, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input, no header", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := cols.index(header)
	if err != nil {
		return nil, err
	}
	need := max(idx.impl, idx.points, idx.cores, idx.time)

	var out []Measurement
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) <= need {
			return nil, fmt.Errorf("%w: line %d has %d fields, need %d", ErrParse, line, len(rec), need+1)
		}
		m := Measurement{Implementation: rec[idx.impl], Line: line}
		if m.PointsLaunched, err = parseInt(rec[idx.points]); err != nil {
			return nil, fmt.Errorf("%w: line %d column %q: %v", ErrParse, line, cols.Points, err)
		}
		if m.Cores, err = parseInt(rec[idx.cores]); err != nil {
			return nil, fmt.Errorf("%w: line %d column %q: %v", ErrParse, line, cols.Cores, err)
		}
		if m.ExecTimeMs, err = strconv.ParseFloat(strings.TrimSpace(rec[idx.time]), 64); err != nil {
			return nil, fmt.Errorf("%w: line %d column %q: %v", ErrParse, line, cols.Time, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
