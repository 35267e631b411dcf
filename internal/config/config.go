// Package config loads gradbook settings from YAML and the environment.
//
// Precedence, lowest first: Default(), the YAML file, environment
// variables (LOG_LEVEL, LOG_FORMAT, GRADBOOK_OUTPUT_DIR), then command
// line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/gradbook/internal/parallel"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the complete gradbook configuration.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Notebook  NotebookConfig  `yaml:"notebook"`
	Plot      PlotConfig      `yaml:"plot"`
	Training  TrainingConfig  `yaml:"training"`
	GradCheck GradCheckConfig `yaml:"gradcheck"`
	Parallel  ParallelConfig  `yaml:"parallel"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // DEBUG, INFO, WARN, ERROR
	Format string `yaml:"format"` // text or json
}

// NotebookConfig controls which cells run and where artifacts go.
type NotebookConfig struct {
	Cells           []string `yaml:"cells"` // empty means all cells
	Seed            uint64   `yaml:"seed"`
	ContinueOnError bool     `yaml:"continue_on_error"`
	OutputDir       string   `yaml:"output_dir"` // empty disables artifacts
}

// PlotConfig sizes terminal plots and the derivative plot grid.
type PlotConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Points int     `yaml:"points"`
	XMin   float64 `yaml:"x_min"`
	XMax   float64 `yaml:"x_max"`
}

// TrainingConfig drives the regression cell.
type TrainingConfig struct {
	Epochs   int     `yaml:"epochs"`
	LR       float64 `yaml:"lr"`
	Momentum float64 `yaml:"momentum"`
	Samples  int     `yaml:"samples"`
}

// GradCheckConfig holds finite-difference settings.
type GradCheckConfig struct {
	Eps float64 `yaml:"eps"`
	Tol float64 `yaml:"tol"`
}

// ParallelConfig mirrors parallel.Config. Workers <= 0 means one per CPU.
type ParallelConfig struct {
	Enabled      bool `yaml:"enabled"`
	Workers      int  `yaml:"workers"`
	MinChunkSize int  `yaml:"min_chunk_size"`
}

// Default returns a complete, valid configuration.
func Default() Config {
	par := parallel.DefaultConfig()
	return Config{
		Log: LogConfig{
			Level:  "INFO",
			Format: "text",
		},
		Notebook: NotebookConfig{
			Seed: 42,
		},
		Plot: PlotConfig{
			Width:  64,
			Height: 16,
			Points: 101,
			XMin:   -6.283185307179586,
			XMax:   6.283185307179586,
		},
		Training: TrainingConfig{
			Epochs:   200,
			LR:       0.1,
			Momentum: 0.5,
			Samples:  32,
		},
		GradCheck: GradCheckConfig{
			Eps: 1e-6,
			Tol: 1e-5,
		},
		Parallel: ParallelConfig{
			Enabled:      par.Enabled,
			Workers:      0,
			MinChunkSize: par.MinChunkSize,
		},
	}
}

// Load returns Default() overlaid with the YAML file at path (if path is
// not empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from LOG_LEVEL, LOG_FORMAT and
// GRADBOOK_OUTPUT_DIR when they are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("GRADBOOK_OUTPUT_DIR"); v != "" {
		c.Notebook.OutputDir = v
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch strings.ToUpper(c.Log.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	if c.Plot.Width < 8 || c.Plot.Height < 4 {
		return fmt.Errorf("%w: plot size %dx%d is below 8x4", ErrInvalidConfig, c.Plot.Width, c.Plot.Height)
	}
	if c.Plot.Points < 2 {
		return fmt.Errorf("%w: plot.points must be at least 2", ErrInvalidConfig)
	}
	if c.Plot.XMin >= c.Plot.XMax {
		return fmt.Errorf("%w: plot.x_min must be below plot.x_max", ErrInvalidConfig)
	}
	if c.Training.Epochs <= 0 || c.Training.Samples <= 1 {
		return fmt.Errorf("%w: training needs epochs > 0 and samples > 1", ErrInvalidConfig)
	}
	if c.Training.LR <= 0 {
		return fmt.Errorf("%w: training.lr must be positive", ErrInvalidConfig)
	}
	if c.Training.Momentum < 0 || c.Training.Momentum >= 1 {
		return fmt.Errorf("%w: training.momentum must be in [0, 1)", ErrInvalidConfig)
	}
	if c.GradCheck.Eps <= 0 || c.GradCheck.Tol <= 0 {
		return fmt.Errorf("%w: gradcheck eps and tol must be positive", ErrInvalidConfig)
	}
	if c.Parallel.MinChunkSize < 0 {
		return fmt.Errorf("%w: parallel.min_chunk_size is negative", ErrInvalidConfig)
	}
	return nil
}

// ParallelConfig converts the settings for the CPU backend.
func (c *Config) ParallelConfig() parallel.Config {
	workers := c.Parallel.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return parallel.Config{
		Enabled:      c.Parallel.Enabled,
		NumWorkers:   workers,
		MinChunkSize: c.Parallel.MinChunkSize,
	}
}
