// Package render draws runtime tables as box-drawn text grids.
package render

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/duzhanyuan/mech/internal/core"
)

// emptyFrame is drawn for tables without rows or columns.
const emptyFrame = "┌┐\n└┘\n"

// style is StyleLight without cell padding, so each column is exactly as
// wide as its widest cell.
var style = func() table.Style {
	s := table.StyleLight
	s.Name = "MechGrid"
	s.Box.PaddingLeft = ""
	s.Box.PaddingRight = ""
	s.Options.DrawBorder = true
	s.Options.SeparateColumns = true
	s.Options.SeparateHeader = false
	s.Options.SeparateRows = false
	return s
}()

// Cell formats one value for display. Numbers use their shortest decimal
// form; every other kind uses its debug form.
func Cell(v core.Value) string {
	if f, ok := v.AsFloat(); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return v.Debug()
}

// Table renders t as a bordered grid with one line per row and no header.
func Table(t *core.Table) string {
	if t == nil || t.Rows == 0 || t.Columns == 0 {
		return emptyFrame
	}

	tw := table.NewWriter()
	tw.SetStyle(style)
	configs := make([]table.ColumnConfig, t.Columns)
	for c := range configs {
		configs[c] = table.ColumnConfig{Number: c + 1, Align: text.AlignLeft}
	}
	tw.SetColumnConfigs(configs)

	for r := 0; r < t.Rows; r++ {
		row := make(table.Row, t.Columns)
		for c := 0; c < t.Columns; c++ {
			row[c] = Cell(t.At(r, c))
		}
		tw.AppendRow(row)
	}
	return tw.Render() + "\n"
}

// Fprint writes the rendered table to w.
func Fprint(w io.Writer, t *core.Table) error {
	_, err := io.WriteString(w, Table(t))
	return err
}
