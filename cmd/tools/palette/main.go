// cmd/tools/palette/main.go
package main

import (
	"fmt"
	"os"

	"github.com/codr1/poemgrid/internal/palette"
)

const closestMatches = 5

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: palette <grid.svg>")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	for _, usage := range palette.Analyze(data) {
		fmt.Printf("%s %s x%d\n", usage.Attribute, usage.Color, usage.Count)
		if ok, ratio, err := palette.ReadableOn(usage.Color, palette.CanvasColor); err == nil {
			verdict := "ok"
			if !ok {
				verdict = "low"
			}
			fmt.Printf("  contrast on canvas: %.2f (%s)\n", ratio, verdict)
		}
		matches, err := palette.Nearest(usage.Color, closestMatches)
		if err != nil {
			fmt.Printf("  %v\n", err)
			continue
		}
		for _, match := range matches {
			fmt.Printf("  %s (%s), Distance: %.4f\n", match.Name, match.Hex, match.Distance)
		}
	}
}
