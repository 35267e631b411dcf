package notebook

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// Cell outcomes.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// CellResult is the outcome of one cell.
type CellResult struct {
	Name     string        `json:"name"`
	Title    string        `json:"title"`
	Status   string        `json:"status"`
	Duration time.Duration `json:"duration_ns"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
}

// Report summarises a notebook run.
type Report struct {
	RunID     string       `json:"run_id"`
	Notebook  string       `json:"notebook"`
	Started   time.Time    `json:"started"`
	Finished  time.Time    `json:"finished"`
	Results   []CellResult `json:"results"`
	Artifacts []string     `json:"artifacts,omitempty"`
}

// Passed returns the number of cells that succeeded.
func (r *Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == StatusOK {
			n++
		}
	}
	return n
}

// Failed returns the number of cells that failed.
func (r *Report) Failed() int {
	return len(r.Results) - r.Passed()
}

// WriteSummary prints a table of cell outcomes.
func (r *Report) WriteSummary(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CELL\tSTATUS\tDURATION")
	fmt.Fprintln(tw, "----\t------\t--------")
	for _, res := range r.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", res.Name, res.Status, res.Duration.Round(time.Microsecond))
	}
	fmt.Fprintf(tw, "\nrun %s: %d passed, %d failed\n", r.RunID, r.Passed(), r.Failed())
	return tw.Flush()
}

func (r *Report) save(a *Artifacts) error {
	for i := range r.Results {
		if r.Results[i].Err != nil {
			r.Results[i].Error = r.Results[i].Err.Error()
		}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	_, err = a.Write("report.json", data)
	return err
}
