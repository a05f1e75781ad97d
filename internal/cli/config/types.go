// Package config provides configuration management for the mech CLI.
//
// Values are layered from defaults, a .env file, a mech.yaml file, MECH_*
// environment variables and explicitly set command-line flags, in that
// order of increasing precedence.
package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/duzhanyuan/mech/internal/core"
)

// Defaults for the server collaborator.
const (
	DefaultPort     = 3012
	DefaultHTTPPort = 8081
	DefaultAddress  = "127.0.0.1"
)

// EnvPrefix is the prefix of configuration environment variables.
const EnvPrefix = "MECH_"

// CoreConfig sizes the runtime core.
type CoreConfig struct {
	Capacity     int `koanf:"capacity"`
	HistoryDepth int `koanf:"history_depth"`
}

// Config holds all CLI configuration options.
type Config struct {
	Serve       bool       `koanf:"serve"`
	Port        int        `koanf:"port"`
	HTTPPort    int        `koanf:"http_port"`
	Address     string     `koanf:"address"`
	Persist     string     `koanf:"persist"`
	Verbose     bool       `koanf:"verbose"`
	HistoryFile string     `koanf:"history_file"`
	Core        CoreConfig `koanf:"core"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Port:        DefaultPort,
		HTTPPort:    DefaultHTTPPort,
		Address:     DefaultAddress,
		HistoryFile: DefaultHistoryFile(),
		Core: CoreConfig{
			Capacity:     core.DefaultCapacity,
			HistoryDepth: core.DefaultHistoryDepth,
		},
	}
}

// WebsocketAddress is the host:port the server collaborator listens on.
func (c *Config) WebsocketAddress() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

// HTTPAddress is the host:port of the static HTTP server.
func (c *Config) HTTPAddress() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.HTTPPort))
}

// DefaultHistoryFile returns the REPL history path under the user cache
// directory, or "" when no cache directory is known.
func DefaultHistoryFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mech", "history")
}
