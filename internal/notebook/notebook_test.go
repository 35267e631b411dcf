package notebook_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/gradbook/internal/autodiff"
	"github.com/born-ml/gradbook/internal/config"
	"github.com/born-ml/gradbook/internal/graphviz"
	"github.com/born-ml/gradbook/internal/notebook"
	"github.com/born-ml/gradbook/internal/plot"
	"github.com/born-ml/gradbook/internal/telemetry"
	"github.com/born-ml/gradbook/internal/tensor"
)

var errBoom = errors.New("boom")

func cell(name string, run func(ctx context.Context, env *notebook.Env) error) notebook.Cell {
	return notebook.Cell{Name: name, Title: strings.ToUpper(name), Run: run}
}

func printing(name string) notebook.Cell {
	return cell(name, func(_ context.Context, env *notebook.Env) error {
		env.Printf("hello from %s\n", name)
		return nil
	})
}

func failing(name string) notebook.Cell {
	return cell(name, func(context.Context, *notebook.Env) error {
		return errBoom
	})
}

func mustNotebook(t *testing.T, cells ...notebook.Cell) *notebook.Notebook {
	t.Helper()
	nb, err := notebook.New("test", cells...)
	require.NoError(t, err)
	return nb
}

func TestNew_Validation(t *testing.T) {
	_, err := notebook.New("dup", printing("a"), printing("a"))
	assert.ErrorIs(t, err, notebook.ErrDuplicateCell)

	_, err = notebook.New("empty", notebook.Cell{Name: "x"})
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	nb := mustNotebook(t, printing("a"), printing("b"), printing("c"))

	all, err := nb.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	picked, err := nb.Select([]string{"c", "a", "c"})
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, "a", picked[0].Name, "selection keeps notebook order")
	assert.Equal(t, "c", picked[1].Name)

	_, err = nb.Select([]string{"a", "zzz"})
	assert.ErrorIs(t, err, notebook.ErrUnknownCell)

	c, ok := nb.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, "B", c.Title)
	_, ok = nb.Lookup("nope")
	assert.False(t, ok)
}

func newRunner(out *bytes.Buffer) *notebook.Runner {
	return &notebook.Runner{Out: out, Config: config.Default()}
}

func TestRun_AllCells(t *testing.T) {
	var out bytes.Buffer
	nb := mustNotebook(t, printing("a"), printing("b"))

	report, err := newRunner(&out).Run(context.Background(), nb, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Passed())
	assert.Equal(t, 0, report.Failed())
	assert.Contains(t, out.String(), "[1/2] A (a)")
	assert.Contains(t, out.String(), "hello from b")
}

func TestRun_StopsOnError(t *testing.T) {
	var out bytes.Buffer
	nb := mustNotebook(t, printing("a"), failing("b"), printing("c"))

	report, err := newRunner(&out).Run(context.Background(), nb, nil)
	require.ErrorIs(t, err, errBoom)

	var cellErr *notebook.CellError
	require.ErrorAs(t, err, &cellErr)
	assert.Equal(t, "b", cellErr.Cell)

	require.Len(t, report.Results, 2)
	assert.Equal(t, notebook.StatusFailed, report.Results[1].Status)
	assert.NotContains(t, out.String(), "hello from c")
}

func TestRun_ContinueOnError(t *testing.T) {
	var out bytes.Buffer
	runner := newRunner(&out)
	runner.Config.Notebook.ContinueOnError = true
	nb := mustNotebook(t, failing("a"), printing("b"))

	report, err := runner.Run(context.Background(), nb, nil)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, report.Passed())
	assert.Equal(t, 1, report.Failed())
	assert.Contains(t, out.String(), "hello from b")
}

func TestRun_RecoversPanics(t *testing.T) {
	var out bytes.Buffer
	nb := mustNotebook(t, cell("shapes", func(_ context.Context, env *notebook.Env) error {
		a := autodiff.Zeros(tensor.Shape{2, 3}, env.Backend)
		b := autodiff.Zeros(tensor.Shape{4}, env.Backend)
		a.Add(b)
		return nil
	}))

	_, err := newRunner(&out).Run(context.Background(), nb, nil)
	require.ErrorIs(t, err, notebook.ErrCellPanicked)
	assert.True(t, autodiff.IsGradEnabled())
}

// TestRunCell_RecoversPanics runs a single cell outside a Runner, the way
// the graph command does.
func TestRunCell_RecoversPanics(t *testing.T) {
	var out bytes.Buffer
	c := cell("matmul", func(_ context.Context, env *notebook.Env) error {
		a := autodiff.Zeros(tensor.Shape{2, 3}, env.Backend)
		a.MatMul(a)
		return nil
	})

	err := notebook.RunCell(context.Background(), c, notebook.NewEnv(c.Name, &out, config.Default()))
	require.ErrorIs(t, err, notebook.ErrCellPanicked)
	assert.Contains(t, err.Error(), "matmul")

	err = notebook.RunCell(context.Background(), failing("f"), notebook.NewEnv("f", &out, config.Default()))
	assert.ErrorIs(t, err, errBoom)
}

func TestRun_UnknownCell(t *testing.T) {
	var out bytes.Buffer
	_, err := newRunner(&out).Run(context.Background(), mustNotebook(t, printing("a")), []string{"b"})
	assert.ErrorIs(t, err, notebook.ErrUnknownCell)
	assert.Empty(t, out.String())
}

func TestRun_Cancelled(t *testing.T) {
	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	nb := mustNotebook(t,
		cell("a", func(context.Context, *notebook.Env) error {
			cancel()
			return nil
		}),
		printing("b"),
	)

	report, err := newRunner(&out).Run(ctx, nb, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, report.Results, 1)
}

// TestRun_Deterministic checks per-cell seeding.
func TestRun_Deterministic(t *testing.T) {
	var draws []float64
	nb := mustNotebook(t,
		printing("first"),
		cell("random", func(_ context.Context, env *notebook.Env) error {
			draws = append(draws, env.Rand.Float64())
			return nil
		}),
	)

	var out bytes.Buffer
	runner := newRunner(&out)
	_, err := runner.Run(context.Background(), nb, nil)
	require.NoError(t, err)
	_, err = runner.Run(context.Background(), nb, []string{"random"})
	require.NoError(t, err)

	require.Len(t, draws, 2)
	assert.Equal(t, draws[0], draws[1])
}

func TestRun_MetricsAndArtifacts(t *testing.T) {
	var out bytes.Buffer
	dir := t.TempDir()
	runner := newRunner(&out)
	runner.Config.Notebook.OutputDir = dir
	runner.Metrics = telemetry.NewMetrics()

	nb := mustNotebook(t, cell("graph", func(_ context.Context, env *notebook.Env) error {
		x := autodiff.Ones(tensor.Shape{2}, env.Backend).RequireGrad().SetName("x")
		y := x.Exp().Sum()
		if _, err := env.Graph("y", graphviz.DefaultOptions(), y); err != nil {
			return err
		}
		p := plot.New(plot.FunctionCurves, "line", "")
		if err := p.AddLine("f", []float64{0, 1}, []float64{0, 1}); err != nil {
			return err
		}
		if err := env.Plot("line", p); err != nil {
			return err
		}
		return y.Backward()
	}))

	report, err := runner.Run(context.Background(), nb, nil)
	require.NoError(t, err)

	runDir := filepath.Join(dir, report.RunID)
	assert.FileExists(t, filepath.Join(runDir, "graph_y.dot"))
	assert.FileExists(t, filepath.Join(runDir, "graph_line.json"))
	assert.Len(t, report.Artifacts, 2)

	data, err := os.ReadFile(filepath.Join(runDir, "report.json"))
	require.NoError(t, err)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, report.RunID, saved["run_id"])

	var metrics bytes.Buffer
	require.NoError(t, runner.Metrics.WriteText(&metrics))
	assert.Contains(t, metrics.String(), `gradbook_cells_total{cell="graph",status="ok"} 1`)
	assert.Contains(t, metrics.String(), "gradbook_backward_passes_total 1")
}

type nopObserver struct{}

func (nopObserver) NodeRecorded(string)                  {}
func (nopObserver) BackwardCompleted(int, time.Duration) {}

func TestRun_RestoresObserver(t *testing.T) {
	installed := &nopObserver{}
	autodiff.SetObserver(installed)
	defer autodiff.SetObserver(nil)

	var out bytes.Buffer
	runner := newRunner(&out)
	runner.Metrics = telemetry.NewMetrics()
	_, err := runner.Run(context.Background(), mustNotebook(t, printing("a")), nil)
	require.NoError(t, err)

	assert.Same(t, installed, autodiff.SetObserver(nil))
}

func TestEnv_GraphWithoutArtifacts(t *testing.T) {
	var out bytes.Buffer
	env := notebook.NewEnv("solo", &out, config.Default())

	x := autodiff.Ones(tensor.Shape{1}, env.Backend).RequireGrad()
	src, err := env.Graph("g", graphviz.DefaultOptions(), x.Sin())
	require.NoError(t, err)
	assert.Contains(t, out.String(), src)

	env.Show("x", x)
	env.Show("none", nil)
	assert.Contains(t, out.String(), "x = tensor([1], requires_grad=true)")
	assert.Contains(t, out.String(), "none = None")
}

func TestReport_WriteSummary(t *testing.T) {
	report := &notebook.Report{
		RunID: "r1",
		Results: []notebook.CellResult{
			{Name: "a", Status: notebook.StatusOK},
			{Name: "b", Status: notebook.StatusFailed},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteSummary(&buf))
	assert.Contains(t, buf.String(), "CELL")
	assert.Contains(t, buf.String(), "run r1: 1 passed, 1 failed")
}
