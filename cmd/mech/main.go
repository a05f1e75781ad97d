// Package main provides the mech command-line client.
package main

import (
	"os"

	"github.com/duzhanyuan/mech/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
