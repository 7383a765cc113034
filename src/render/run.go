package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/Blakeline-was-taken/prog-avancee/src/analysis"
	"github.com/Blakeline-was-taken/prog-avancee/src/logging"
)

// Viewer displays a rendered chart. Show blocks until the chart is dismissed.
type Viewer interface {
	Show(ctx context.Context, title string, img image.Image) error
}

// Headless is a Viewer that returns immediately.
type Headless struct{}

func (Headless) Show(context.Context, string, image.Image) error { return nil }

// SavePNG encodes img and writes it to path, replacing any existing file.
func SavePNG(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("png encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Run renders, saves and shows one chart per series of ds, in dataset order.
// It stops at the first error; files already written are kept. A nil viewer means headless.
func Run(ctx context.Context, ds *analysis.Dataset, opts Options, v Viewer) ([]string, error) {
	defer logging.TimeTrack(time.Now(), "render")
	if v == nil {
		v = Headless{}
	}
	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	var written []string
	err := ds.Each(func(s *analysis.Series) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, w := range s.Check() {
			logging.Warnf("%s", w)
		}
		img, dropped, err := Chart(ds.Mode, s, opts)
		if err != nil {
			return err
		}
		if dropped > 0 {
			logging.Warnf("%s/%d: %d non-finite speedup value(s) left out of the chart", s.Implementation, s.Key, dropped)
		}
		path := filepath.Join(dir, FileName(ds.Mode, s))
		if err := SavePNG(path, img); err != nil {
			return err
		}
		written = append(written, path)
		logging.Infof("wrote %s (%d points)", path, s.Len())
		if err := v.Show(ctx, Title(ds.Mode, s), img); err != nil {
			return fmt.Errorf("show %s: %w", filepath.Base(path), err)
		}
		return nil
	})
	return written, err
}
