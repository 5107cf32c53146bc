package main

import (
	"fmt"
	"os"

	"picklist/pkg/contour"
	"picklist/pkg/imagesource"
	"picklist/pkg/marks"
)

// usage: marks_dump <photo> [preset]
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: marks_dump <photo> [preset]")
		os.Exit(2)
	}
	p := os.Args[1]
	preset := marks.PresetRevised
	if len(os.Args) > 2 {
		preset = os.Args[2]
	}
	cfg, err := marks.Preset(preset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v (known: %v)\n", err, marks.PresetNames())
		os.Exit(2)
	}
	content, err := os.ReadFile(p)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	src, err := imagesource.Decode(content, imagesource.Options{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	shapes, err := contour.Native{}.Extract(contour.FromImage(src.Image, contour.DefaultThreshold))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	labels := marks.Classify(shapes, cfg)
	fmt.Printf("preset=%s min=%g max=%g factor=%g regions=%d\n",
		preset, cfg.MinArea, cfg.MaxArea, cfg.SimplifyToleranceFactor, len(shapes))
	for i, s := range shapes {
		eps := cfg.SimplifyToleranceFactor * s.Perimeter()
		fmt.Printf("%3d area=%8.1f perim=%8.1f vertices=%3d %s\n",
			i, s.Area(), s.Perimeter(), s.SimplifiedVertices(eps), labels[i].Symbol())
	}
	fmt.Printf("marks=%v checks=%d\n", marks.Symbols(labels), marks.CountChecks(labels))
}
