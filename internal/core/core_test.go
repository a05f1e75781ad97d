package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duzhanyuan/mech/internal/testutil"
)

func compileAndStep(t *testing.T, c *Core, src string) error {
	t.Helper()
	blocks, err := NewCompiler().Compile(src)
	require.NoError(t, err)
	c.Register(blocks)
	return c.Step()
}

func TestCompiler_Compile(t *testing.T) {
	tests := []struct {
		name        string
		src         string
		wantBlocks  int
		wantOutputs [][]string
	}{
		{
			name:        "single assignment",
			src:         "x = 1 + 1",
			wantBlocks:  1,
			wantOutputs: [][]string{{"x"}},
		},
		{
			name:        "two statements",
			src:         "a = 1\nb = a + 1",
			wantBlocks:  2,
			wantOutputs: [][]string{{"a"}, {"b"}},
		},
		{
			name:        "tuple assignment",
			src:         "x, y = 1, 2",
			wantBlocks:  1,
			wantOutputs: [][]string{{"x", "y"}},
		},
		{
			name:        "function definition",
			src:         "def double(n):\n    return n * 2\n",
			wantBlocks:  1,
			wantOutputs: [][]string{{"double"}},
		},
		{
			name:       "empty source",
			src:        "",
			wantBlocks: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, err := NewCompiler().Compile(tt.src)
			require.NoError(t, err)
			require.Len(t, blocks, tt.wantBlocks)
			for i, want := range tt.wantOutputs {
				assert.Equal(t, want, blocks[i].Outputs)
			}
		})
	}
}

func TestCompiler_BlockInputs(t *testing.T) {
	blocks, err := NewCompiler().Compile("total = price * quantity")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, []string{"price", "quantity"}, blocks[0].Inputs)
}

func TestCompiler_Consumes(t *testing.T) {
	c := NewCompiler()

	assert.NoError(t, c.Consumes("x = 1 + 1"))
	assert.ErrorIs(t, c.Consumes("1 + 1"), ErrNotConsumed)
	assert.Error(t, c.Consumes("x = "))
	assert.Error(t, c.Consumes("x = (1"))
}

func TestCompiler_StableIDs(t *testing.T) {
	a, err := NewCompiler().Compile("x = 1")
	require.NoError(t, err)
	b, err := NewCompiler().Compile("x = 1")
	require.NoError(t, err)
	c, err := NewCompiler().Compile("x = 2")
	require.NoError(t, err)

	assert.Equal(t, a[0].ID, b[0].ID)
	assert.NotEqual(t, a[0].ID, c[0].ID)
}

func TestCore_StepPublishesTables(t *testing.T) {
	c := NewCore(DefaultCapacity, DefaultHistoryDepth, WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, compileAndStep(t, c, "x = 1 + 1"))

	tbl, ok := c.Table(HashName("x"))
	require.True(t, ok)
	assert.Equal(t, 1, tbl.Rows)
	assert.Equal(t, 1, tbl.Columns)
	f, isNum := tbl.At(0, 0).AsFloat()
	require.True(t, isNum)
	assert.Equal(t, 2.0, f)

	_, ok = c.Table(HashName("missing"))
	assert.False(t, ok)
}

func TestCore_TableShapes(t *testing.T) {
	c := NewCore(DefaultCapacity, DefaultHistoryDepth)
	require.NoError(t, compileAndStep(t, c, `
grid = [[1, 22.5], [3, 4]]
output = ["a", "b", "c"]
flags = (True, False)
empty = []
def helper():
    return 1
`))

	grid, ok := c.Table(HashName("grid"))
	require.True(t, ok)
	assert.Equal(t, 2, grid.Rows)
	assert.Equal(t, 2, grid.Columns)
	assert.Equal(t, "22.5", grid.At(0, 1).String())

	out, ok := c.Table(OutputTable)
	require.True(t, ok)
	assert.Equal(t, 3, out.Rows)
	assert.Equal(t, 1, out.Columns)
	assert.Equal(t, "c", out.At(2, 0).String())

	flags, ok := c.Table(HashName("flags"))
	require.True(t, ok)
	b, isBool := flags.At(1, 0).AsBool()
	require.True(t, isBool)
	assert.False(t, b)

	empty, ok := c.Table(HashName("empty"))
	require.True(t, ok)
	assert.Equal(t, 0, empty.Rows)
	assert.Equal(t, 0, empty.Columns)

	_, ok = c.Table(HashName("helper"))
	assert.False(t, ok, "functions are not tables")
}

func TestCore_RaggedTableIsBlockError(t *testing.T) {
	c := NewCore(DefaultCapacity, DefaultHistoryDepth)
	err := compileAndStep(t, c, "bad = [[1, 2], [3]]")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRagged)

	_, ok := c.Table(HashName("bad"))
	assert.False(t, ok)
}

func TestCore_ReactiveRerun(t *testing.T) {
	c := NewCore(DefaultCapacity, DefaultHistoryDepth)
	require.NoError(t, compileAndStep(t, c, "a = 1\nb = a * 10"))

	b, ok := c.Table(HashName("b"))
	require.True(t, ok)
	assert.Equal(t, "10", b.At(0, 0).String())

	// Changing a re-runs the block that reads it.
	require.NoError(t, compileAndStep(t, c, "a = 2"))

	b, ok = c.Table(HashName("b"))
	require.True(t, ok)
	assert.Equal(t, "20", b.At(0, 0).String())
}

func TestCore_UndefinedNameReported(t *testing.T) {
	c := NewCore(DefaultCapacity, DefaultHistoryDepth)
	err := compileAndStep(t, c, "y = missing + 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestCore_CapacityBoundsCycles(t *testing.T) {
	c := NewCore(10, DefaultHistoryDepth)
	require.NoError(t, compileAndStep(t, c, "a = 0\nb = 0"))

	err := compileAndStep(t, c, "a = b + 1\nb = a + 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capacity")
}

func TestCore_HistoryIsBounded(t *testing.T) {
	c := NewCore(DefaultCapacity, 2)
	for _, src := range []string{"x = 1", "x = 2", "x = 3"} {
		require.NoError(t, compileAndStep(t, c, src))
	}

	history := c.History()
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[0].Step)
	assert.Equal(t, 3, history[1].Step)
	assert.Equal(t, []string{"x"}, history[1].Changed)
}

func TestCore_RegisterSameBlockTwice(t *testing.T) {
	c := NewCore(DefaultCapacity, DefaultHistoryDepth)
	require.NoError(t, compileAndStep(t, c, "x = 1"))
	require.NoError(t, compileAndStep(t, c, "x = 1"))

	assert.Contains(t, c.String(), "blocks: 1")
	assert.Contains(t, c.Describe(), "Runtime: 1 blocks")
}
