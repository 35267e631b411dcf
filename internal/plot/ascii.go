package plot

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// Glyphs are assigned to series in order.
const Glyphs = "*+ox#@%&"

// ASCIIOptions sets the canvas size in characters.
type ASCIIOptions struct {
	Width  int
	Height int
}

// DefaultASCIIOptions returns a 64x16 canvas.
func DefaultASCIIOptions() ASCIIOptions {
	return ASCIIOptions{Width: 64, Height: 16}
}

// RenderASCII draws p onto w. Non-finite points are skipped. When several
// series hit the same cell the later one wins.
func RenderASCII(w io.Writer, p *PlotData, opts ASCIIOptions) error {
	if opts.Width < 8 || opts.Height < 4 {
		return fmt.Errorf("plot canvas %dx%d is too small", opts.Width, opts.Height)
	}

	xmin, xmax, ymin, ymax, ok := bounds(p)
	if !ok {
		_, err := fmt.Fprintf(w, "%s: no data\n", p.Title)
		return err
	}

	grid := make([][]byte, opts.Height)
	for r := range grid {
		grid[r] = []byte(strings.Repeat(" ", opts.Width))
	}

	// x axis at y = 0 when it is in range
	if ymin <= 0 && ymax >= 0 {
		row := scale(0, ymin, ymax, opts.Height)
		for c := range grid[row] {
			grid[row][c] = '-'
		}
	}

	for i, s := range p.Series {
		glyph := Glyphs[i%len(Glyphs)]
		for _, pt := range s.Data {
			if !finite(pt.X) || !finite(pt.Y) {
				continue
			}
			col := scale(pt.X, xmin, xmax, opts.Width)
			row := opts.Height - 1 - scale(pt.Y, ymin, ymax, opts.Height)
			grid[row][col] = glyph
		}
	}

	var b strings.Builder
	if p.Title != "" {
		fmt.Fprintf(&b, "%s\n", p.Title)
	}
	for r, line := range grid {
		label := ""
		switch r {
		case 0:
			label = formatTick(ymax)
		case opts.Height - 1:
			label = formatTick(ymin)
		}
		fmt.Fprintf(&b, "%9s |%s\n", label, line)
	}
	fmt.Fprintf(&b, "%9s +%s\n", "", strings.Repeat("-", opts.Width))
	left, right := formatTick(xmin), formatTick(xmax)
	pad := max(1, opts.Width-len(left)-len(right))
	fmt.Fprintf(&b, "%9s  %s%s%s\n", "", left, strings.Repeat(" ", pad), right)

	if p.Config.ShowLegend && len(p.Series) > 0 {
		legend := make([]string, len(p.Series))
		for i, s := range p.Series {
			legend[i] = fmt.Sprintf("%c %s", Glyphs[i%len(Glyphs)], s.Name)
		}
		fmt.Fprintf(&b, "%9s  %s\n", "", strings.Join(legend, "   "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// bounds returns the data range over all finite points.
func bounds(p *PlotData) (xmin, xmax, ymin, ymax float64, ok bool) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, s := range p.Series {
		for _, pt := range s.Data {
			if !finite(pt.X) || !finite(pt.Y) {
				continue
			}
			ok = true
			xmin, xmax = math.Min(xmin, pt.X), math.Max(xmax, pt.X)
			ymin, ymax = math.Min(ymin, pt.Y), math.Max(ymax, pt.Y)
		}
	}
	if xmin == xmax {
		xmin, xmax = xmin-1, xmax+1
	}
	if ymin == ymax {
		ymin, ymax = ymin-1, ymax+1
	}
	return xmin, xmax, ymin, ymax, ok
}

// scale maps v in [lo, hi] onto a cell index in [0, n).
func scale(v, lo, hi float64, n int) int {
	i := int(math.Round((v - lo) / (hi - lo) * float64(n-1)))
	return min(max(i, 0), n-1)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func formatTick(v float64) string {
	return fmt.Sprintf("%.3g", v)
}
