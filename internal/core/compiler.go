package core

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/zeebo/xxh3"
	"go.starlark.net/syntax"
)

// ErrNotConsumed is returned when source parses but contains a statement
// that cannot become a block.
var ErrNotConsumed = errors.New("input not consumed")

// fileOptions are the dialect options shared by the compiler and the core.
var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// Block is one compiled, independently schedulable statement.
type Block struct {
	ID      uint64
	Inputs  []string
	Outputs []string

	source string
	index  int
}

// Source returns the chunk the block was compiled from.
func (b Block) Source() string { return b.source }

// file re-parses the block's chunk and returns its statement as a
// standalone, unresolved file.
func (b Block) file() (*syntax.File, error) {
	f, err := fileOptions.Parse(blockPath(b), b.source, 0)
	if err != nil {
		return nil, err
	}
	if b.index >= len(f.Stmts) {
		return nil, fmt.Errorf("block %x: statement %d missing from source", b.ID, b.index)
	}
	return &syntax.File{Path: f.Path, Stmts: f.Stmts[b.index : b.index+1], Options: f.Options}, nil
}

func blockPath(b Block) string {
	return "block-" + strconv.FormatUint(b.ID, 16)
}

// Compiler turns source text into blocks.
type Compiler struct{}

// NewCompiler creates a compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile parses src and returns one block per top-level statement.
func (c *Compiler) Compile(src string) ([]Block, error) {
	f, err := c.parse(src)
	if err != nil {
		return nil, err
	}
	blocks := make([]Block, 0, len(f.Stmts))
	for i, stmt := range f.Stmts {
		blocks = append(blocks, Block{
			ID:      xxh3.HashString(src + "\x00" + strconv.Itoa(i)),
			Inputs:  inputs(stmt),
			Outputs: outputs(stmt),
			source:  src,
			index:   i,
		})
	}
	return blocks, nil
}

// Consumes reports whether src compiles in full. A nil error means every
// byte of src became part of a block.
func (c *Compiler) Consumes(src string) error {
	_, err := c.parse(src)
	return err
}

func (c *Compiler) parse(src string) (*syntax.File, error) {
	f, err := fileOptions.Parse("<input>", src, 0)
	if err != nil {
		return nil, err
	}
	for _, stmt := range f.Stmts {
		if _, ok := stmt.(*syntax.ExprStmt); ok {
			pos, _ := stmt.Span()
			return nil, fmt.Errorf("%w: %s: expression does not write a table", ErrNotConsumed, pos)
		}
	}
	return f, nil
}

// inputs returns the identifiers the statement reads. Plain assignment
// targets are writes and do not count.
func inputs(stmt syntax.Stmt) []string {
	seen := make(map[string]struct{})
	var visit func(n syntax.Node) bool
	visit = func(n syntax.Node) bool {
		switch x := n.(type) {
		case *syntax.AssignStmt:
			if x.Op == syntax.EQ {
				walkTargetReads(x.LHS, visit)
				syntax.Walk(x.RHS, visit)
				return false
			}
		case *syntax.Ident:
			seen[x.Name] = struct{}{}
		}
		return true
	}
	syntax.Walk(stmt, visit)
	return sortedKeys(seen)
}

// walkTargetReads visits the parts of an assignment target that are read,
// such as the operands of x[i] or x.f.
func walkTargetReads(e syntax.Expr, visit func(syntax.Node) bool) {
	switch x := e.(type) {
	case *syntax.Ident:
	case *syntax.TupleExpr:
		for _, el := range x.List {
			walkTargetReads(el, visit)
		}
	case *syntax.ListExpr:
		for _, el := range x.List {
			walkTargetReads(el, visit)
		}
	case *syntax.ParenExpr:
		walkTargetReads(x.X, visit)
	default:
		syntax.Walk(e, visit)
	}
}

// outputs returns the global names the statement binds.
func outputs(stmt syntax.Stmt) []string {
	seen := make(map[string]struct{})
	switch s := stmt.(type) {
	case *syntax.AssignStmt:
		bindTargets(s.LHS, seen)
	case *syntax.DefStmt:
		seen[s.Name.Name] = struct{}{}
	case *syntax.LoadStmt:
		for _, id := range s.To {
			seen[id.Name] = struct{}{}
		}
	case *syntax.ForStmt:
		bindTargets(s.Vars, seen)
		for _, inner := range s.Body {
			for _, name := range outputs(inner) {
				seen[name] = struct{}{}
			}
		}
	case *syntax.WhileStmt:
		for _, inner := range s.Body {
			for _, name := range outputs(inner) {
				seen[name] = struct{}{}
			}
		}
	case *syntax.IfStmt:
		for _, inner := range append(append([]syntax.Stmt{}, s.True...), s.False...) {
			for _, name := range outputs(inner) {
				seen[name] = struct{}{}
			}
		}
	}
	return sortedKeys(seen)
}

func bindTargets(e syntax.Expr, seen map[string]struct{}) {
	switch x := e.(type) {
	case *syntax.Ident:
		seen[x.Name] = struct{}{}
	case *syntax.TupleExpr:
		for _, el := range x.List {
			bindTargets(el, seen)
		}
	case *syntax.ListExpr:
		for _, el := range x.List {
			bindTargets(el, seen)
		}
	case *syntax.ParenExpr:
		bindTargets(x.X, seen)
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
