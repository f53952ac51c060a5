package main

import (
	"os"

	"github.com/GrainArc/SketchMap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
