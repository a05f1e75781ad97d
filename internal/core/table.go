package core

import (
	"errors"
	"fmt"
)

// ErrRagged is returned when a grid's cell count does not match its shape.
var ErrRagged = errors.New("table is not rectangular")

// Table is an immutable, dense, row-major grid of values.
type Table struct {
	ID      TableID
	Name    string
	Rows    int
	Columns int
	cells   []Value
}

// NewTable builds a table from row-major cells. len(cells) must equal
// rows*columns.
func NewTable(id TableID, name string, rows, columns int, cells []Value) (*Table, error) {
	if rows < 0 || columns < 0 {
		return nil, fmt.Errorf("%w: negative shape %dx%d", ErrRagged, rows, columns)
	}
	if len(cells) != rows*columns {
		return nil, fmt.Errorf("%w: %d cells for shape %dx%d", ErrRagged, len(cells), rows, columns)
	}
	owned := make([]Value, len(cells))
	copy(owned, cells)
	return &Table{ID: id, Name: name, Rows: rows, Columns: columns, cells: owned}, nil
}

// NewTableFromRows builds a table from a slice of equally sized rows.
func NewTableFromRows(id TableID, name string, rows [][]Value) (*Table, error) {
	columns := 0
	if len(rows) > 0 {
		columns = len(rows[0])
	}
	cells := make([]Value, 0, len(rows)*columns)
	for i, row := range rows {
		if len(row) != columns {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrRagged, i, len(row), columns)
		}
		cells = append(cells, row...)
	}
	return NewTable(id, name, len(rows), columns, cells)
}

// At returns the cell at (row, column). It panics when out of range.
func (t *Table) At(row, column int) Value {
	if row < 0 || row >= t.Rows || column < 0 || column >= t.Columns {
		panic(fmt.Sprintf("core: cell (%d,%d) out of range for %dx%d table", row, column, t.Rows, t.Columns))
	}
	return t.cells[row*t.Columns+column]
}

// Cells calls fn for every cell in row-major order until fn returns false.
func (t *Table) Cells(fn func(row, column int, v Value) bool) {
	for r := 0; r < t.Rows; r++ {
		for c := 0; c < t.Columns; c++ {
			if !fn(r, c, t.cells[r*t.Columns+c]) {
				return
			}
		}
	}
}

// Equal reports whether two tables have the same shape and cells.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Rows != o.Rows || t.Columns != o.Columns {
		return false
	}
	for i := range t.cells {
		if !t.cells[i].Equal(o.cells[i]) {
			return false
		}
	}
	return true
}

func (t *Table) String() string {
	return fmt.Sprintf("#%s (%d x %d)", t.Name, t.Rows, t.Columns)
}
