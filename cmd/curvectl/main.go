// Package main is the entry point for the curvectl CLI.
package main

import (
	"os"

	"github.com/meenmo/curvelib/cmd/curvectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
