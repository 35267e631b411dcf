package notebook

import (
	"errors"
	"fmt"
)

// Notebook errors.
var (
	// ErrUnknownCell: a selected cell name does not exist.
	ErrUnknownCell = errors.New("unknown cell")

	// ErrDuplicateCell: two cells share a name.
	ErrDuplicateCell = errors.New("duplicate cell name")

	// ErrCellPanicked: a cell panicked; the panic value is in the message.
	ErrCellPanicked = errors.New("cell panicked")
)

// CellError wraps the error a cell returned.
type CellError struct {
	Cell string // Cell name
	Err  error  // Error returned or recovered
}

// Error implements the error interface.
func (e *CellError) Error() string {
	return fmt.Sprintf("cell %s: %v", e.Cell, e.Err)
}

// Unwrap returns the cell's error.
func (e *CellError) Unwrap() error {
	return e.Err
}
