package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "../resultats.csv", cfg.Plot.Input)
	require.Equal(t, "strong", cfg.Plot.Mode)
	require.Equal(t, 600, cfg.Plot.Width)
	require.Equal(t, "Implémentation", cfg.Plot.Columns.Implementation)
	require.Equal(t, "Temps d'exécution (ms)", cfg.Plot.ColumnNames().Time)
	require.Equal(t, []int{1, 2, 4, 8}, cfg.Bench.Cores)
	require.False(t, cfg.Plot.Interactive)
}

func TestLoadConfig_NoFile(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig().Plot, cfg.Plot)
}

func TestLoadConfig_YAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scalaplot.yaml")
	yaml := `
log_level: warn
plot:
  input: data/out.csv
  mode: faible
  width: 800
  sort_by_cores: true
  columns:
    time: time_ms
bench:
  cores: [1, 3]
  implementations: [Assignment102]
  workers: ["10.0.0.2:25545", "10.0.0.3:25546"]
worker:
  port: 26000
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.EffectiveLogLevel())
	require.Equal(t, "data/out.csv", cfg.Plot.Input)
	require.Equal(t, "faible", cfg.Plot.Mode)
	require.Equal(t, 800, cfg.Plot.Width)
	require.Equal(t, 600, cfg.Plot.Height)
	require.True(t, cfg.Plot.SortByCores)
	require.Equal(t, "time_ms", cfg.Plot.Columns.Time)
	require.Equal(t, "Nombre de coeurs", cfg.Plot.Columns.Cores)
	require.Equal(t, []int{1, 3}, cfg.Bench.Cores)
	require.Equal(t, []string{"Assignment102"}, cfg.Bench.Implementations)
	require.Equal(t, []string{"10.0.0.2:25545", "10.0.0.3:25546"}, cfg.Bench.Workers)
	require.Equal(t, ":26000", cfg.Worker.Addr())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SCALAPLOT_PLOT_MODE", "weak")
	t.Setenv("SCALAPLOT_PLOT_HEIGHT", "450")
	t.Setenv("SCALAPLOT_DEBUG", "true")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "weak", cfg.Plot.Mode)
	require.Equal(t, 450, cfg.Plot.Height)
	require.Equal(t, "debug", cfg.EffectiveLogLevel())
}

func TestLoadConfig_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plot: [unclosed"), 0o644))
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestValidatePlotConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Plot.OutputDir = filepath.Join(t.TempDir(), "charts", "nested")
	require.NoError(t, cfg.ValidatePlotConfig())
	_, err := os.Stat(cfg.Plot.OutputDir)
	require.NoError(t, err, "output directory should be created")

	cfg.Plot.Mode = "diagonal"
	require.ErrorIs(t, cfg.ValidatePlotConfig(), ErrInvalidMode)

	cfg.Plot.Mode = "forte"
	cfg.Plot.Width = 0
	require.ErrorIs(t, cfg.ValidatePlotConfig(), ErrInvalidSize)

	cfg.Plot.Width = 600
	cfg.Plot.Columns.Cores = ""
	require.Error(t, cfg.ValidatePlotConfig())
}

func TestValidateBenchConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.ValidateBenchConfig())

	cfg.Bench.Cores = []int{1, 0}
	require.Error(t, cfg.ValidateBenchConfig())

	cfg.Bench.Cores = []int{1}
	cfg.Bench.Mode = "sideways"
	require.ErrorIs(t, cfg.ValidateBenchConfig(), ErrInvalidMode)

	cfg.Bench.Mode = "weak"
	cfg.Bench.Workers = []string{"no-port"}
	require.Error(t, cfg.ValidateBenchConfig())

	cfg.Bench.Workers = nil
	cfg.Bench.Plan = filepath.Join(t.TempDir(), "missing.csv")
	require.Error(t, cfg.ValidateBenchConfig())
}

func TestValidateWorkerConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.ValidateWorkerConfig())
	require.Equal(t, ":25545", cfg.Worker.Addr())

	cfg.Worker.Port = 70000
	require.Error(t, cfg.ValidateWorkerConfig())
}
