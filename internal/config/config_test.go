package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/gradbook/internal/config"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gradbook.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("GRADBOOK_OUTPUT_DIR", "")
}

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint64(42), cfg.Notebook.Seed)
	assert.Empty(t, cfg.Notebook.Cells)
}

func TestLoad_NoFile(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
log:
  level: debug
  format: json
notebook:
  cells: [scalar_backward, chain_rule]
  seed: 7
  continue_on_error: true
plot:
  width: 40
training:
  epochs: 10
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"scalar_backward", "chain_rule"}, cfg.Notebook.Cells)
	assert.Equal(t, uint64(7), cfg.Notebook.Seed)
	assert.True(t, cfg.Notebook.ContinueOnError)
	assert.Equal(t, 40, cfg.Plot.Width)
	assert.Equal(t, 10, cfg.Training.Epochs)

	// untouched fields keep their defaults
	assert.Equal(t, config.Default().Plot.Height, cfg.Plot.Height)
	assert.Equal(t, config.Default().Training.LR, cfg.Training.LR)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("GRADBOOK_OUTPUT_DIR", "/tmp/artifacts")

	cfg, err := config.Load(writeFile(t, "log:\n  level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, "WARN", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/tmp/artifacts", cfg.Notebook.OutputDir)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = config.Load(writeFile(t, "plot: [not, a, map]"))
	assert.Error(t, err)

	_, err = config.Load(writeFile(t, "training:\n  momentum: 1.5\n"))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"log level", func(c *config.Config) { c.Log.Level = "LOUD" }},
		{"log format", func(c *config.Config) { c.Log.Format = "xml" }},
		{"plot size", func(c *config.Config) { c.Plot.Width = 2 }},
		{"plot points", func(c *config.Config) { c.Plot.Points = 1 }},
		{"plot range", func(c *config.Config) { c.Plot.XMin = c.Plot.XMax }},
		{"epochs", func(c *config.Config) { c.Training.Epochs = 0 }},
		{"samples", func(c *config.Config) { c.Training.Samples = 1 }},
		{"lr", func(c *config.Config) { c.Training.LR = -1 }},
		{"momentum", func(c *config.Config) { c.Training.Momentum = 1 }},
		{"gradcheck", func(c *config.Config) { c.GradCheck.Eps = 0 }},
		{"chunk size", func(c *config.Config) { c.Parallel.MinChunkSize = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
		})
	}
}

func TestParallelConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Parallel.Enabled = true
	cfg.Parallel.MinChunkSize = 128

	par := cfg.ParallelConfig()
	assert.True(t, par.Enabled)
	assert.Equal(t, runtime.NumCPU(), par.NumWorkers)
	assert.Equal(t, 128, par.MinChunkSize)

	cfg.Parallel.Workers = 3
	assert.Equal(t, 3, cfg.ParallelConfig().NumWorkers)
}
