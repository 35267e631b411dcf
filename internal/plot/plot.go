// Package plot holds the notebook's chart data and renders it.
//
// Charts are stored in the JSON format used by plotting sidecars
// (PlotData with named series of points) so they can be written as
// artifacts, and drawn in the terminal by ASCII.
package plot

import (
	"encoding/json"
	"fmt"
	"time"
)

// PlotType identifies what a chart shows.
type PlotType string

const (
	// FunctionCurves plots a function and its derivatives over a grid.
	FunctionCurves PlotType = "function_curves"
	// TrainingCurves plots loss per step.
	TrainingCurves PlotType = "training_curves"
	// RegressionScatter plots data points against a fitted line.
	RegressionScatter PlotType = "regression_scatter"
)

// PlotData is a chart in sidecar JSON form.
type PlotData struct {
	PlotType  PlotType     `json:"plot_type"`
	Title     string       `json:"title"`
	Timestamp time.Time    `json:"timestamp"`
	ModelName string       `json:"model_name"`
	Series    []SeriesData `json:"series"`
	Config    PlotConfig   `json:"config"`

	Metrics map[string]any `json:"metrics,omitempty"`
}

// SeriesData is one named line or scatter.
type SeriesData struct {
	Name string      `json:"name"`
	Type string      `json:"type"` // "line" or "scatter"
	Data []DataPoint `json:"data"`
}

// DataPoint is a single (x, y) sample.
type DataPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty"`
}

// PlotConfig holds axis labels and display hints.
type PlotConfig struct {
	XAxisLabel string `json:"x_axis_label"`
	YAxisLabel string `json:"y_axis_label"`
	XAxisScale string `json:"x_axis_scale"` // "linear", "log"
	YAxisScale string `json:"y_axis_scale"`
	ShowLegend bool   `json:"show_legend"`
	ShowGrid   bool   `json:"show_grid"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

// New creates an empty chart with linear axes and a legend.
func New(kind PlotType, title, modelName string) *PlotData {
	return &PlotData{
		PlotType:  kind,
		Title:     title,
		Timestamp: time.Now(),
		ModelName: modelName,
		Config: PlotConfig{
			XAxisLabel: "x",
			YAxisLabel: "y",
			XAxisScale: "linear",
			YAxisScale: "linear",
			ShowLegend: true,
			Width:      800,
			Height:     600,
		},
	}
}

// AddLine appends a line series. xs and ys must have equal length.
func (p *PlotData) AddLine(name string, xs, ys []float64) error {
	return p.add(name, "line", xs, ys)
}

// AddScatter appends a scatter series. xs and ys must have equal length.
func (p *PlotData) AddScatter(name string, xs, ys []float64) error {
	return p.add(name, "scatter", xs, ys)
}

func (p *PlotData) add(name, kind string, xs, ys []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("series %q: %d x values but %d y values", name, len(xs), len(ys))
	}
	points := make([]DataPoint, len(xs))
	for i := range xs {
		points[i] = DataPoint{X: xs[i], Y: ys[i]}
	}
	p.Series = append(p.Series, SeriesData{Name: name, Type: kind, Data: points})
	return nil
}

// JSON encodes the chart.
func (p *PlotData) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode plot %q: %w", p.Title, err)
	}
	return data, nil
}
