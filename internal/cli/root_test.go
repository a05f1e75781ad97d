package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duzhanyuan/mech/internal/cli/commands"
	"github.com/duzhanyuan/mech/internal/cli/config"
)

type recordingServer struct {
	cfg   *config.Config
	paths []string
}

func (s *recordingServer) Serve(_ context.Context, cfg *config.Config, paths []string) error {
	s.cfg = cfg
	s.paths = paths
	return nil
}

func newTestRoot(t *testing.T, opts ...Option) (*bytes.Buffer, func(args ...string) error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Cleanup(config.ResetConfig)

	buf := new(bytes.Buffer)
	return buf, func(args ...string) error {
		cmd := NewRootCmd(opts...)
		cmd.SetOut(buf)
		cmd.SetErr(buf)
		cmd.SetArgs(args)
		return cmd.Execute()
	}
}

func TestRootFlags_Shorthands(t *testing.T) {
	cmd := NewRootCmd()
	flags := cmd.PersistentFlags()

	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{"serve", "s", "false"},
		{"port", "p", "3012"},
		{"http-port", "t", "8081"},
		{"address", "a", "127.0.0.1"},
		{"persist", "r", ""},
		{"verbose", "v", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := flags.Lookup(tt.name)
			require.NotNil(t, f)
			assert.Equal(t, tt.shorthand, f.Shorthand)
			assert.Equal(t, tt.def, f.DefValue)
		})
	}
}

func TestRoot_Serve(t *testing.T) {
	srv := &recordingServer{}
	_, run := newTestRoot(t, WithServer(srv))

	require.NoError(t, run("-s", "-p", "4000", "-t", "9000", "-a", "::1", "lib"))
	require.NotNil(t, srv.cfg)
	assert.Equal(t, "[::1]:4000", srv.cfg.WebsocketAddress())
	assert.Equal(t, "[::1]:9000", srv.cfg.HTTPAddress())
	assert.Equal(t, []string{"lib"}, srv.paths)
}

func TestRoot_ServeUnlinked(t *testing.T) {
	_, run := newTestRoot(t)

	err := run("--serve")
	require.ErrorIs(t, err, ErrNoServer)
	assert.Contains(t, err.Error(), "127.0.0.1:3012")
	assert.Contains(t, err.Error(), "127.0.0.1:8081")
}

func TestRoot_InvalidConfig(t *testing.T) {
	_, run := newTestRoot(t)

	err := run("--http-port", "70000", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http_port must be between 1 and 65535")
}

func TestRoot_Completion(t *testing.T) {
	buf, run := newTestRoot(t)

	require.NoError(t, run("completion", "bash"))
	assert.Contains(t, buf.String(), "bash completion")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
	}{
		{"success", nil, 0, ""},
		{"failure", errors.New("boom"), 1, "Error: boom\n"},
		{"failed tests", commands.ErrTestsFailed, 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.Equal(t, tt.wantCode, exitCode(tt.err, &buf))
			assert.Equal(t, tt.wantOut, buf.String())
		})
	}
}
