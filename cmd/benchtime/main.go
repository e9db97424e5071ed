package main

import (
	"os"

	"github.com/psantana5/benchtime/cmd/benchtime/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
