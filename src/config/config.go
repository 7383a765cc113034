package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Blakeline-was-taken/prog-avancee/src/analysis"
)

// EnvPrefix is prepended to every environment override, e.g. SCALAPLOT_PLOT_MODE=weak.
const EnvPrefix = "SCALAPLOT"

var (
	ErrInvalidMode = errors.New("invalid scaling mode")
	ErrInvalidSize = errors.New("invalid chart size")
)

// Config holds all configuration for the application
type Config struct {
	Debug    bool   `yaml:"debug" mapstructure:"debug"`
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	LogFile  string `yaml:"log_file" mapstructure:"log_file"`

	Plot   PlotConfig   `yaml:"plot" mapstructure:"plot"`
	Bench  BenchConfig  `yaml:"bench" mapstructure:"bench"`
	Worker WorkerConfig `yaml:"worker" mapstructure:"worker"`
}

// PlotConfig drives the plot and summary subcommands.
type PlotConfig struct {
	Input       string        `yaml:"input" mapstructure:"input"`
	Mode        string        `yaml:"mode" mapstructure:"mode"`
	OutputDir   string        `yaml:"output_dir" mapstructure:"output_dir"`
	Interactive bool          `yaml:"interactive" mapstructure:"interactive"`
	SortByCores bool          `yaml:"sort_by_cores" mapstructure:"sort_by_cores"`
	Caption     bool          `yaml:"caption" mapstructure:"caption"`
	Width       int           `yaml:"width" mapstructure:"width"`
	Height      int           `yaml:"height" mapstructure:"height"`
	Columns     ColumnsConfig `yaml:"columns" mapstructure:"columns"`
}

// ColumnsConfig names the CSV header of each required field.
type ColumnsConfig struct {
	Implementation string `yaml:"implementation" mapstructure:"implementation"`
	Points         string `yaml:"points" mapstructure:"points"`
	Cores          string `yaml:"cores" mapstructure:"cores"`
	Time           string `yaml:"time" mapstructure:"time"`
}

// BenchConfig drives the bench subcommand.
type BenchConfig struct {
	Output string `yaml:"output" mapstructure:"output"`
	// Plan is an optional cores,points,tests CSV; when empty the plan is built from Cores/Points/Tests.
	Plan            string   `yaml:"plan" mapstructure:"plan"`
	Mode            string   `yaml:"mode" mapstructure:"mode"`
	Cores           []int    `yaml:"cores" mapstructure:"cores"`
	Points          int      `yaml:"points" mapstructure:"points"`
	Tests           int      `yaml:"tests" mapstructure:"tests"`
	Implementations []string `yaml:"implementations" mapstructure:"implementations"`
	// Workers are host:port addresses used by the MasterSocket implementation.
	Workers []string `yaml:"workers" mapstructure:"workers"`
}

// WorkerConfig drives the worker subcommand.
type WorkerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// Addr is the listen address of the worker.
func (w WorkerConfig) Addr() string {
	return net.JoinHostPort(w.Host, strconv.Itoa(w.Port))
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	def := analysis.DefaultColumns()
	return &Config{
		LogLevel: "info",
		Plot: PlotConfig{
			Input:     "../resultats.csv",
			Mode:      "strong",
			OutputDir: ".",
			Caption:   true,
			Width:     600,
			Height:    600,
			Columns: ColumnsConfig{
				Implementation: def.Implementation,
				Points:         def.Points,
				Cores:          def.Cores,
				Time:           def.Time,
			},
		},
		Bench: BenchConfig{
			Output:          "resultats.csv",
			Mode:            "strong",
			Cores:           []int{1, 2, 4, 8},
			Points:          16_000_000,
			Tests:           3,
			Implementations: []string{"Pi.java", "Assignment102"},
		},
		Worker: WorkerConfig{
			Port: 25545,
		},
	}
}

// setDefaults registers every key so AutomaticEnv can see env-only overrides during Unmarshal.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("debug", c.Debug)
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("log_file", c.LogFile)

	v.SetDefault("plot.input", c.Plot.Input)
	v.SetDefault("plot.mode", c.Plot.Mode)
	v.SetDefault("plot.output_dir", c.Plot.OutputDir)
	v.SetDefault("plot.interactive", c.Plot.Interactive)
	v.SetDefault("plot.sort_by_cores", c.Plot.SortByCores)
	v.SetDefault("plot.caption", c.Plot.Caption)
	v.SetDefault("plot.width", c.Plot.Width)
	v.SetDefault("plot.height", c.Plot.Height)
	v.SetDefault("plot.columns.implementation", c.Plot.Columns.Implementation)
	v.SetDefault("plot.columns.points", c.Plot.Columns.Points)
	v.SetDefault("plot.columns.cores", c.Plot.Columns.Cores)
	v.SetDefault("plot.columns.time", c.Plot.Columns.Time)

	v.SetDefault("bench.output", c.Bench.Output)
	v.SetDefault("bench.plan", c.Bench.Plan)
	v.SetDefault("bench.mode", c.Bench.Mode)
	v.SetDefault("bench.cores", c.Bench.Cores)
	v.SetDefault("bench.points", c.Bench.Points)
	v.SetDefault("bench.tests", c.Bench.Tests)
	v.SetDefault("bench.implementations", c.Bench.Implementations)
	v.SetDefault("bench.workers", c.Bench.Workers)

	v.SetDefault("worker.host", c.Worker.Host)
	v.SetDefault("worker.port", c.Worker.Port)
}

// LoadConfig loads configuration from file and environment variables.
// CLI flags are applied afterwards by the caller.
func LoadConfig(configFile string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, config)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return config, nil
}

// EffectiveLogLevel resolves the log level; Debug wins over LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// ColumnNames converts the configured header names for the loader.
func (p PlotConfig) ColumnNames() analysis.Columns {
	return analysis.Columns{
		Implementation: p.Columns.Implementation,
		Points:         p.Columns.Points,
		Cores:          p.Columns.Cores,
		Time:           p.Columns.Time,
	}
}

// ValidatePlotConfig validates plot and summary configuration
func (c *Config) ValidatePlotConfig() error {
	if _, err := analysis.ParseMode(c.Plot.Mode); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Plot.Mode)
	}
	if c.Plot.Input == "" {
		return fmt.Errorf("input file must be specified")
	}
	if c.Plot.Width <= 0 || c.Plot.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, c.Plot.Width, c.Plot.Height)
	}
	cols := c.Plot.ColumnNames()
	if cols.Implementation == "" || cols.Points == "" || cols.Cores == "" || cols.Time == "" {
		return fmt.Errorf("all four column names must be set")
	}
	if c.Plot.OutputDir == "" {
		c.Plot.OutputDir = "."
	}
	if err := os.MkdirAll(c.Plot.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// ValidateBenchConfig validates benchmark configuration
func (c *Config) ValidateBenchConfig() error {
	if _, err := analysis.ParseMode(c.Bench.Mode); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Bench.Mode)
	}
	if c.Bench.Output == "" {
		return fmt.Errorf("output file must be specified")
	}
	if len(c.Bench.Implementations) == 0 {
		return fmt.Errorf("at least one implementation must be selected")
	}
	for _, addr := range c.Bench.Workers {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("invalid worker address %q: %w", addr, err)
		}
	}
	if c.Bench.Plan != "" {
		if _, err := os.Stat(c.Bench.Plan); os.IsNotExist(err) {
			return fmt.Errorf("plan file does not exist: %s", c.Bench.Plan)
		}
		return nil
	}
	if len(c.Bench.Cores) == 0 {
		return fmt.Errorf("cores list must not be empty")
	}
	for _, n := range c.Bench.Cores {
		if n <= 0 {
			return fmt.Errorf("core counts must be greater than 0, got %d", n)
		}
	}
	if c.Bench.Points <= 0 {
		return fmt.Errorf("points must be greater than 0")
	}
	if c.Bench.Tests <= 0 {
		return fmt.Errorf("tests must be greater than 0")
	}
	return nil
}

// ValidateWorkerConfig validates worker configuration
func (c *Config) ValidateWorkerConfig() error {
	if c.Worker.Port < 0 || c.Worker.Port > 65535 {
		return fmt.Errorf("worker port out of range: %d", c.Worker.Port)
	}
	return nil
}
