package notebook

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/born-ml/gradbook/internal/autodiff"
	"github.com/born-ml/gradbook/internal/config"
	"github.com/born-ml/gradbook/internal/graphviz"
	"github.com/born-ml/gradbook/internal/plot"
	"github.com/born-ml/gradbook/internal/tensor"
)

// Env is what a cell gets to work with.
type Env struct {
	Cell      string
	Out       io.Writer
	Backend   tensor.Backend
	Rand      *rand.Rand
	Config    config.Config
	Artifacts *Artifacts
	Logger    *slog.Logger

	// OnGraph, when set, receives every graph a cell renders.
	OnGraph func(name, dot string)
}

// Printf writes formatted text to the cell output.
func (e *Env) Printf(format string, args ...any) {
	fmt.Fprintf(e.Out, format, args...)
}

// Println writes a line to the cell output.
func (e *Env) Println(args ...any) {
	fmt.Fprintln(e.Out, args...)
}

// Show prints "name = tensor(...)".
func (e *Env) Show(name string, t *autodiff.Tensor) {
	if t == nil {
		e.Printf("%s = None\n", name)
		return
	}
	e.Printf("%s = %s\n", name, t)
}

// Plot draws p in the terminal and saves it as <cell>_<name>.json.
func (e *Env) Plot(name string, p *plot.PlotData) error {
	opts := plot.ASCIIOptions{Width: e.Config.Plot.Width, Height: e.Config.Plot.Height}
	if err := plot.RenderASCII(e.Out, p, opts); err != nil {
		return err
	}

	data, err := p.JSON()
	if err != nil {
		return err
	}
	return e.save(name+".json", data)
}

// Graph renders the graph behind roots as DOT. The source is saved as
// <cell>_<name>.dot when artifacts are enabled, and printed otherwise.
func (e *Env) Graph(name string, opts graphviz.Options, roots ...*autodiff.Tensor) (string, error) {
	src := graphviz.RenderWith(opts, roots...)
	if e.OnGraph != nil {
		e.OnGraph(name, src)
	}
	if !e.Artifacts.Enabled() {
		e.Println(src)
		return src, nil
	}
	return src, e.save(name+".dot", []byte(src))
}

// Save stores data as the artifact <cell>_<name>. It is a no-op when
// artifacts are disabled.
func (e *Env) Save(name string, data []byte) error {
	return e.save(name, data)
}

func (e *Env) save(name string, data []byte) error {
	path, err := e.Artifacts.Write(e.Cell+"_"+name, data)
	if err != nil {
		return err
	}
	if path != "" {
		e.Printf("[saved %s]\n", path)
		if e.Logger != nil {
			e.Logger.Debug("artifact written", "path", path, "bytes", len(data))
		}
	}
	return nil
}

// Artifacts writes run outputs below <dir>/<run id>. A nil or dir-less
// Artifacts discards everything.
type Artifacts struct {
	dir     string
	written []string
}

// NewArtifacts returns an artifact sink rooted at dir/runID. An empty dir
// disables artifacts.
func NewArtifacts(dir, runID string) *Artifacts {
	if dir == "" {
		return &Artifacts{}
	}
	return &Artifacts{dir: filepath.Join(dir, runID)}
}

// Enabled reports whether writes reach the filesystem.
func (a *Artifacts) Enabled() bool {
	return a != nil && a.dir != ""
}

// Dir returns the run's artifact directory, or "" when disabled.
func (a *Artifacts) Dir() string {
	if a == nil {
		return ""
	}
	return a.dir
}

// Write stores data under name and returns its path ("" when disabled).
func (a *Artifacts) Write(name string, data []byte) (string, error) {
	if !a.Enabled() {
		return "", nil
	}
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact dir: %w", err)
	}
	path := filepath.Join(a.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // artifacts are meant to be readable
		return "", fmt.Errorf("failed to write artifact %s: %w", name, err)
	}
	a.written = append(a.written, path)
	return path, nil
}

// Written returns the paths written so far.
func (a *Artifacts) Written() []string {
	if a == nil {
		return nil
	}
	return a.written
}
