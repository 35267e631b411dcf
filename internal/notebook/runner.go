package notebook

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"math/rand/v2"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/gradbook/internal/autodiff"
	"github.com/born-ml/gradbook/internal/backend/cpu"
	"github.com/born-ml/gradbook/internal/config"
	"github.com/born-ml/gradbook/internal/telemetry"
	"github.com/born-ml/gradbook/internal/tensor"
)

// Runner executes notebook cells one after another.
type Runner struct {
	Out     io.Writer
	Config  config.Config
	Backend tensor.Backend     // nil: CPU backend built from Config.Parallel
	Metrics *telemetry.Metrics // nil: no metrics
}

// Run executes the cells selected by names (all cells when empty).
//
// Each cell gets a fresh Env with its own rand.Rand seeded from the
// configured seed and the cell name, so a cell prints the same values
// whether it runs alone or as part of the whole notebook.
//
// Execution stops at the first failing cell unless
// Config.Notebook.ContinueOnError is set. The returned report covers every
// cell that ran; the error is the first cell failure, or ctx's error.
func (r *Runner) Run(ctx context.Context, nb *Notebook, names []string) (*Report, error) {
	cells, err := nb.Select(names)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := telemetry.WithRunID(telemetry.FromContext(ctx), runID)
	ctx = telemetry.WithLogger(ctx, logger)

	backend := r.Backend
	if backend == nil {
		backend = cpu.NewWithConfig(r.Config.ParallelConfig())
	}

	if r.Metrics != nil {
		prev := autodiff.SetObserver(r.Metrics)
		defer autodiff.SetObserver(prev)
	}

	artifacts := NewArtifacts(r.Config.Notebook.OutputDir, runID)
	report := &Report{
		RunID:    runID,
		Notebook: nb.Title(),
		Started:  time.Now(),
	}

	logger.Info("notebook started", "notebook", nb.Title(), "cells", len(cells), "backend", backend.Name())

	var firstErr error
	for i, cell := range cells {
		if err := ctx.Err(); err != nil {
			firstErr = err
			break
		}

		fmt.Fprintf(r.Out, "\n%s\n[%d/%d] %s (%s)\n%s\n",
			strings.Repeat("=", 64), i+1, len(cells), cell.Title, cell.Name, strings.Repeat("=", 64))

		cellLogger := telemetry.WithCell(logger, cell.Name)
		env := &Env{
			Cell:      cell.Name,
			Out:       r.Out,
			Backend:   backend,
			Rand:      rand.New(rand.NewPCG(r.Config.Notebook.Seed, nameHash(cell.Name))),
			Config:    r.Config,
			Artifacts: artifacts,
			Logger:    cellLogger,
		}

		cellLogger.Debug("cell started")
		start := time.Now()
		cellErr := RunCell(telemetry.WithLogger(ctx, cellLogger), cell, env)
		elapsed := time.Since(start)

		result := CellResult{Name: cell.Name, Title: cell.Title, Duration: elapsed, Status: StatusOK}
		if cellErr != nil {
			result.Status = StatusFailed
			result.Err = cellErr
			cellLogger.Error("cell failed", "error", cellErr, "duration", elapsed)
			fmt.Fprintf(r.Out, "error: %v\n", cellErr)
		} else {
			cellLogger.Info("cell finished", "duration", elapsed)
		}
		report.Results = append(report.Results, result)

		if r.Metrics != nil {
			r.Metrics.CellFinished(cell.Name, elapsed, cellErr)
		}

		if cellErr != nil {
			if firstErr == nil {
				firstErr = &CellError{Cell: cell.Name, Err: cellErr}
			}
			if !r.Config.Notebook.ContinueOnError {
				break
			}
		}
	}

	report.Finished = time.Now()
	report.Artifacts = artifacts.Written()
	if artifacts.Enabled() {
		if err := report.save(artifacts); err != nil {
			logger.Warn("failed to save report", "error", err)
		}
	}

	logger.Info("notebook finished",
		"passed", report.Passed(), "failed", report.Failed(), "duration", report.Finished.Sub(report.Started))
	return report, firstErr
}

// RunCell runs cell in env and turns a panic into ErrCellPanicked.
func RunCell(ctx context.Context, cell Cell, env *Env) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if env.Logger != nil {
				env.Logger.Debug("cell panic", "stack", string(debug.Stack()))
			}
			err = fmt.Errorf("%w: %v", ErrCellPanicked, p)
		}
	}()
	return cell.Run(ctx, env)
}

func nameHash(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}

// discardLogger is used when an Env is built outside a Runner.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NewEnv builds a standalone Env, for running a single cell body from
// tests or other commands.
func NewEnv(cell string, out io.Writer, cfg config.Config) *Env {
	return &Env{
		Cell:      cell,
		Out:       out,
		Backend:   cpu.NewWithConfig(cfg.ParallelConfig()),
		Rand:      rand.New(rand.NewPCG(cfg.Notebook.Seed, nameHash(cell))),
		Config:    cfg,
		Artifacts: &Artifacts{},
		Logger:    discardLogger,
	}
}
