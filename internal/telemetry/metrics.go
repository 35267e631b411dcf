package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "gradbook"

// Cell outcomes used as the status label.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Metrics collects engine and notebook counters. It implements
// autodiff.Observer.
type Metrics struct {
	registry *prometheus.Registry

	nodesRecorded   *prometheus.CounterVec
	backwardPasses  prometheus.Counter
	nodesVisited    prometheus.Counter
	backwardSeconds prometheus.Histogram
	cellsRun        *prometheus.CounterVec
	cellSeconds     *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		nodesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_nodes_recorded_total",
			Help:      "Operations recorded into the autodiff graph, by backward function.",
		}, []string{"op"}),
		backwardPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backward_passes_total",
			Help:      "Completed Backward and Grad walks.",
		}),
		nodesVisited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backward_nodes_visited_total",
			Help:      "Tensors visited by backward walks.",
		}),
		backwardSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backward_duration_seconds",
			Help:      "Duration of backward walks.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 7),
		}),
		cellsRun: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_total",
			Help:      "Notebook cells executed, by cell and status.",
		}, []string{"cell", "status"}),
		cellSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cell_duration_seconds",
			Help:      "Duration of notebook cells.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"cell"}),
	}

	m.registry.MustRegister(
		m.nodesRecorded,
		m.backwardPasses,
		m.nodesVisited,
		m.backwardSeconds,
		m.cellsRun,
		m.cellSeconds,
	)
	return m
}

// Registry returns the registry holding all collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// NodeRecorded counts a recorded graph node.
func (m *Metrics) NodeRecorded(op string) {
	m.nodesRecorded.WithLabelValues(op).Inc()
}

// BackwardCompleted counts a finished backward walk.
func (m *Metrics) BackwardCompleted(nodes int, elapsed time.Duration) {
	m.backwardPasses.Inc()
	m.nodesVisited.Add(float64(nodes))
	m.backwardSeconds.Observe(elapsed.Seconds())
}

// CellFinished records the outcome of a notebook cell.
func (m *Metrics) CellFinished(cell string, elapsed time.Duration, err error) {
	status := StatusOK
	if err != nil {
		status = StatusFailed
	}
	m.cellsRun.WithLabelValues(cell, status).Inc()
	m.cellSeconds.WithLabelValues(cell).Observe(elapsed.Seconds())
}

// WriteText writes every metric in the Prometheus text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
