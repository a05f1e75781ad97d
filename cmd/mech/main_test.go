// Package main provides tests for the mech CLI.
package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/duzhanyuan/mech/internal/cli"
	"github.com/duzhanyuan/mech/internal/cli/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := execute(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "mech v") {
		t.Errorf("version output should contain 'mech v', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := execute(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	expected := []string{"run", "test", "repl", "--serve", "--port", "--http-port", "--address", "--persist"}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("help output should contain '%s', got: %s", want, output)
		}
	}
}

func TestServeWithoutServer(t *testing.T) {
	_, err := execute(t, "--serve", "-p", "4000", "-a", "0.0.0.0")
	if !errors.Is(err, cli.ErrNoServer) {
		t.Fatalf("expected ErrNoServer, got: %v", err)
	}
	if !strings.Contains(err.Error(), "0.0.0.0:4000") {
		t.Errorf("error should name the websocket address, got: %v", err)
	}
	if !strings.Contains(err.Error(), "0.0.0.0:8081") {
		t.Errorf("error should name the http address, got: %v", err)
	}
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	program := filepath.Join(dir, "hello.mec")
	if err := os.WriteFile(program, []byte(`output = ["hello", "world"]`), 0o600); err != nil {
		t.Fatalf("failed to write program: %v", err)
	}

	output, err := execute(t, "run", program)
	if err != nil {
		t.Fatalf("run command error = %v", err)
	}
	if output != "hello\nworld\n" {
		t.Errorf("unexpected run output: %q", output)
	}
}

func TestInvalidFlag(t *testing.T) {
	_, err := execute(t, "--port", "0", "version")
	if err == nil {
		t.Fatal("expected an error for port 0")
	}
	if !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("unexpected error: %v", err)
	}
}
