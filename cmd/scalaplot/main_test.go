package main

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Blakeline-was-taken/prog-avancee/src/analysis"
	"github.com/Blakeline-was-taken/prog-avancee/src/bench"
	"github.com/Blakeline-was-taken/prog-avancee/src/config"
)

const sampleCSV = `Implémentation,Points lancés,Nombre de coeurs,Temps d'exécution (ms)
X,1000,1,100
X,1000,2,50
Y,2000,1,80
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resultats.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootPlotsHeadless(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "-i", writeSample(t), "-o", dir)
	require.NoError(t, err)

	for _, name := range []string{"scalabilite_forte_X_1000.png", "scalabilite_forte_Y_2000.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		require.Contains(t, out, name)
	}
}

func TestPlotWeakMode(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "plot", "--input", writeSample(t), "--output-dir", dir, "--mode", "faible", "--no-caption")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.ElementsMatch(t, []string{
		"scalabilite_faible_X_1000.png",
		"scalabilite_faible_X_500.png",
		"scalabilite_faible_Y_2000.png",
	}, names)
}

func TestPlotInvalidMode(t *testing.T) {
	_, err := execute(t, "plot", "-i", writeSample(t), "-o", t.TempDir(), "-m", "diagonal")
	require.ErrorIs(t, err, config.ErrInvalidMode)
}

func TestPlotMissingInput(t *testing.T) {
	_, err := execute(t, "-i", filepath.Join(t.TempDir(), "absent.csv"), "-o", t.TempDir())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSummary(t *testing.T) {
	out, err := execute(t, "summary", "-i", writeSample(t))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	require.Contains(t, lines[0], "efficiency")
	require.Contains(t, lines[2], "2.000")
	require.Contains(t, lines[2], "1.000")
}

func TestSummaryWarnsOnBadBaseline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.csv")
	csv := "Implémentation,Points lancés,Nombre de coeurs,Temps d'exécution (ms)\nZ,100,2,10\nZ,100,1,20\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))
	out, err := execute(t, "summary", "-i", path)
	require.NoError(t, err)
	require.Contains(t, out, "warning:")
}

func TestBenchThenPlot(t *testing.T) {
	dir := t.TempDir()
	results := filepath.Join(dir, "resultats.csv")
	out, err := execute(t, "bench", "--output", results, "--cores", "1,2", "--points", "2000", "--tests", "1", "--impl", "Pi.java", "--mode", "weak")
	require.NoError(t, err)
	require.Contains(t, out, results)

	rows, err := analysis.LoadCSV(results, analysis.DefaultColumns())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 4000, rows[1].PointsLaunched)

	_, err = execute(t, "plot", "-i", results, "-o", dir, "-m", "weak")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "scalabilite_faible_Pi.java_2000.png"))
	require.NoError(t, err)
}

func TestBenchFromPlan(t *testing.T) {
	dir := t.TempDir()
	plan := filepath.Join(dir, "plan.csv")
	require.NoError(t, os.WriteFile(plan, []byte("cores,points,tests\n1,1000,2\n4,1000,2\n"), 0o644))
	results := filepath.Join(dir, "out.csv")
	_, err := execute(t, "bench", "--plan", plan, "--output", results, "--impl", "Assignment102")
	require.NoError(t, err)

	rows, err := analysis.LoadCSV(results, analysis.DefaultColumns())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 4, rows[1].Cores)
	require.Equal(t, "Assignment102", rows[0].Implementation)
}

func TestBenchUnknownImplementation(t *testing.T) {
	_, err := execute(t, "bench", "--output", filepath.Join(t.TempDir(), "r.csv"), "--impl", "Nope", "--points", "100", "--cores", "1")
	require.Error(t, err)
}

func TestUnknownSubcommand(t *testing.T) {
	_, err := execute(t, "frobnicate")
	require.Error(t, err)
}

func TestPlotZeroCores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.csv")
	csv := "Implémentation,Points lancés,Nombre de coeurs,Temps d'exécution (ms)\nX,1000,0,100\nX,1000,2,50\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	dir := t.TempDir()
	_, err := execute(t, "-i", path, "-o", dir)
	require.NoError(t, err, "strong scaling plots a zero-core row")
	_, err = os.Stat(filepath.Join(dir, "scalabilite_forte_X_1000.png"))
	require.NoError(t, err)

	_, err = execute(t, "-i", path, "-o", dir, "-m", "weak")
	require.ErrorIs(t, err, analysis.ErrInvalidValue)
}

func TestBenchOverWorkers(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- (&bench.Worker{Seed: 1}).Serve(ctx, ln) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	results := filepath.Join(t.TempDir(), "sock.csv")
	_, err = execute(t, "bench", "--output", results, "--cores", "1,2", "--points", "4000", "--tests", "1",
		"--impl", bench.NameSocket, "--workers", ln.Addr().String())
	require.NoError(t, err)

	rows, err := analysis.LoadCSV(results, analysis.DefaultColumns())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, bench.NameSocket, rows[0].Implementation)
}

func TestBenchSocketNeedsWorkers(t *testing.T) {
	_, err := execute(t, "bench", "--output", filepath.Join(t.TempDir(), "r.csv"), "--impl", bench.NameSocket, "--cores", "1", "--points", "100")
	require.ErrorIs(t, err, bench.ErrNoWorkers)
}

func TestWorkerRejectsBadPort(t *testing.T) {
	_, err := execute(t, "worker", "--port", "70000")
	require.Error(t, err)
}
