package core

import (
	"fmt"

	"go.starlark.net/starlark"
)

// tableFromValue converts a global into a table. ok is false for globals
// that are not tables, such as functions and dicts.
//
//	[[1, 2], [3, 4]] -> 2x2
//	[1, 2, 3]        -> 3x1
//	7                -> 1x1
func tableFromValue(name string, v starlark.Value) (*Table, bool, error) {
	id := HashName(name)
	switch x := v.(type) {
	case starlark.Callable, *starlark.Dict:
		return nil, false, nil
	case *starlark.List:
		t, err := tableFromSequence(id, name, listElems(x))
		return t, err == nil, err
	case starlark.Tuple:
		t, err := tableFromSequence(id, name, x)
		return t, err == nil, err
	default:
		t, err := NewTable(id, name, 1, 1, []Value{valueOf(v)})
		return t, err == nil, err
	}
}

func tableFromSequence(id TableID, name string, elems []starlark.Value) (*Table, error) {
	if len(elems) == 0 {
		return NewTable(id, name, 0, 0, nil)
	}
	if _, nested := rowElems(elems[0]); !nested {
		cells := make([]Value, len(elems))
		for i, e := range elems {
			cells[i] = valueOf(e)
		}
		return NewTable(id, name, len(elems), 1, cells)
	}
	rows := make([][]Value, len(elems))
	for i, e := range elems {
		row, ok := rowElems(e)
		if !ok {
			return nil, fmt.Errorf("#%s: %w: row %d is a %s, not a list", name, ErrRagged, i, e.Type())
		}
		rows[i] = make([]Value, len(row))
		for j, cell := range row {
			rows[i][j] = valueOf(cell)
		}
	}
	t, err := NewTableFromRows(id, name, rows)
	if err != nil {
		return nil, fmt.Errorf("#%s: %w", name, err)
	}
	return t, nil
}

func rowElems(v starlark.Value) ([]starlark.Value, bool) {
	switch x := v.(type) {
	case *starlark.List:
		return listElems(x), true
	case starlark.Tuple:
		return x, true
	}
	return nil, false
}

func listElems(l *starlark.List) []starlark.Value {
	out := make([]starlark.Value, l.Len())
	for i := range out {
		out[i] = l.Index(i)
	}
	return out
}

// valueOf converts a single starlark value into a cell.
func valueOf(v starlark.Value) Value {
	switch x := v.(type) {
	case starlark.Bool:
		return Bool(bool(x))
	case starlark.String:
		return String(string(x))
	case starlark.Int, starlark.Float:
		f, _ := starlark.AsFloat(x)
		return Number(f)
	default:
		return Opaque(v.String())
	}
}
