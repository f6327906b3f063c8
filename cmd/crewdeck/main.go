// Package main is the entry point for the crewdeck CLI.
package main

import (
	"os"

	"github.com/crewdeck/crewdeck/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
