// Package main is the entry point for the gabtab CLI.
package main

import (
	"os"

	"github.com/gabtab/gabtab/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
