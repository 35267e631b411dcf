package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/gradbook/internal/cli"
	"github.com/born-ml/gradbook/internal/config"
	"github.com/born-ml/gradbook/internal/notebook"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("GRADBOOK_OUTPUT_DIR", "")

	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd("v1.2.3")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "gradbook v1.2.3\n", out)
}

func TestList(t *testing.T) {
	out, _, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "chain_rule")
	assert.Contains(t, out, "linear_regression")

	out, _, err = execute(t, "list", "--json")
	require.NoError(t, err)
	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Equal(t, "leaf_tensors", rows[0]["name"])
}

func TestRun_SelectedCells(t *testing.T) {
	out, stderr, err := execute(t, "run", "scalar_backward", "higher_order", "--metrics", "--log-level", "debug")
	require.NoError(t, err)

	assert.Contains(t, out, "[1/2]")
	assert.Contains(t, out, "dy/dx = tensor(8)")
	assert.Contains(t, out, "2 passed, 0 failed")
	assert.Contains(t, stderr, "gradbook_cells_total")
	assert.Contains(t, stderr, "cell started")
}

func TestRun_OutputDirAndConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "gradbook.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("notebook:\n  cells: [graph_viz]\nlog:\n  format: json\n"), 0o600))

	outDir := filepath.Join(dir, "out")
	out, stderr, err := execute(t, "run", "--config", cfgPath, "--output-dir", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed")
	assert.Contains(t, stderr, `"msg":"notebook finished"`)

	matches, err := filepath.Glob(filepath.Join(outDir, "*", "graph_viz_loss.dot"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRun_UnknownCell(t *testing.T) {
	_, _, err := execute(t, "run", "nope")
	assert.ErrorIs(t, err, notebook.ErrUnknownCell)
}

func TestRun_InvalidFlags(t *testing.T) {
	_, _, err := execute(t, "run", "--log-level", "LOUD", "scalar_backward")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestGraph(t *testing.T) {
	out, _, err := execute(t, "graph", "graph_viz")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph")
	assert.NotContains(t, out, "recorded functions")

	_, _, err = execute(t, "graph", "scalar_backward")
	assert.ErrorContains(t, err, "draws no graph")

	_, _, err = execute(t, "graph", "missing")
	assert.ErrorIs(t, err, notebook.ErrUnknownCell)
}
