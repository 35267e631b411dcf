// Package notebook runs an ordered list of cells, the way an interactive
// notebook would, and reports what each cell did.
package notebook

import (
	"context"
	"fmt"
)

// Cell is one step of a notebook.
type Cell struct {
	Name  string // Stable identifier used for selection, e.g. "chain_rule"
	Title string // Heading printed before the cell runs
	Run   func(ctx context.Context, env *Env) error
}

// Notebook is an ordered set of uniquely named cells.
type Notebook struct {
	title string
	cells []Cell
	index map[string]int
}

// New builds a notebook. Cell names must be unique and non-empty.
func New(title string, cells ...Cell) (*Notebook, error) {
	nb := &Notebook{
		title: title,
		cells: cells,
		index: make(map[string]int, len(cells)),
	}
	for i, c := range cells {
		if c.Name == "" || c.Run == nil {
			return nil, fmt.Errorf("cell %d: name and run func are required", i)
		}
		if _, ok := nb.index[c.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCell, c.Name)
		}
		nb.index[c.Name] = i
	}
	return nb, nil
}

// Title returns the notebook title.
func (nb *Notebook) Title() string {
	return nb.title
}

// Cells returns all cells in order.
func (nb *Notebook) Cells() []Cell {
	return nb.cells
}

// Lookup returns the cell called name.
func (nb *Notebook) Lookup(name string) (Cell, bool) {
	i, ok := nb.index[name]
	if !ok {
		return Cell{}, false
	}
	return nb.cells[i], true
}

// Select returns the named cells in notebook order. No names selects every
// cell. Repeated names are run once.
func (nb *Notebook) Select(names []string) ([]Cell, error) {
	if len(names) == 0 {
		return nb.cells, nil
	}

	want := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := nb.index[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCell, name)
		}
		want[name] = true
	}

	selected := make([]Cell, 0, len(want))
	for _, c := range nb.cells {
		if want[c.Name] {
			selected = append(selected, c)
		}
	}
	return selected, nil
}
