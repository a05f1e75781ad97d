package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_RejectsGaps(t *testing.T) {
	_, err := NewTable(HashName("t"), "t", 2, 2, []Value{Number(1), Number(2), Number(3)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRagged)

	_, err = NewTableFromRows(HashName("t"), "t", [][]Value{{Number(1), Number(2)}, {Number(3)}})
	assert.ErrorIs(t, err, ErrRagged)
}

func TestTable_CellsRowMajor(t *testing.T) {
	tbl, err := NewTableFromRows(HashName("t"), "t", [][]Value{
		{String("a"), String("b")},
		{String("c"), String("d")},
	})
	require.NoError(t, err)

	var got []string
	tbl.Cells(func(_, _ int, v Value) bool {
		got = append(got, v.String())
		return true
	})
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}

func TestTable_CopiesCells(t *testing.T) {
	cells := []Value{Number(1)}
	tbl, err := NewTable(HashName("t"), "t", 1, 1, cells)
	require.NoError(t, err)

	cells[0] = Number(99)
	assert.Equal(t, "1", tbl.At(0, 0).String())
}

func TestValue_Formatting(t *testing.T) {
	tests := []struct {
		name      string
		value     Value
		wantPlain string
		wantDebug string
	}{
		{"integral number", Number(1), "1", "1"},
		{"fraction", Number(22.5), "22.5", "22.5"},
		{"negative", Number(-3.25), "-3.25", "-3.25"},
		{"bool", Bool(true), "true", "true"},
		{"string", String("hi"), "hi", `"hi"`},
		{"opaque", Opaque("None"), "None", "None"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantPlain, tt.value.String())
			assert.Equal(t, tt.wantDebug, tt.value.Debug())
		})
	}
}

func TestHashName_Deterministic(t *testing.T) {
	assert.Equal(t, HashName("output"), HashName("output"))
	assert.NotEqual(t, HashName("output"), HashName("test"))
	assert.Equal(t, OutputTable, HashName("output"))
}
