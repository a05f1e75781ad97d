// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/duzhanyuan/mech/internal/cli/output"
)

// Programs are the sources written by SetupTestProject.
var Programs = map[string]string{
	"arith.mec":   "x = 2\ny = x * 21\ntest = [y == 42, x < y]",
	"strings.mec": `greeting = "hello"` + "\n" + `test = [greeting + " world" == "hello world"]`,
	"failing.mec": "test = [1 > 2]",
	"silent.mec":  "z = [[1, 2], [3, 4]]",
}

// SetupTestProject writes Programs into a fresh directory and returns it.
// Running it in test mode yields total 4, passed 3, failed 1.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	for name, src := range Programs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o750); err != nil {
		t.Fatalf("failed to create nested: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nested", "ignored.mec"), []byte("test = [False]"), 0o600); err != nil {
		t.Fatalf("failed to create nested/ignored.mec: %v", err)
	}
	return dir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a test renderer with the given TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
