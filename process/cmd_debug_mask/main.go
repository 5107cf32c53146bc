// Command cmd_debug_mask writes the ink mask the mark classifier sees, so
// thresholds can be tuned against real photos.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"picklist/pkg/contour"
	"picklist/pkg/imagesource"
)

var (
	out       string
	threshold int
	adaptive  int
	bias      int
	dilate    int
	sharpen   float64
	contrast  float64
)

func main() {
	cmd := &cobra.Command{
		Use:   "cmd_debug_mask <photo>",
		Short: "Write the thresholded ink mask of a picklist photo as PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "", "output PNG (default <photo>.mask.png)")
	f.IntVarP(&threshold, "threshold", "t", int(contour.DefaultThreshold), "gray level at or below which a pixel is ink")
	f.IntVar(&adaptive, "adaptive", 0, "use an adaptive threshold with this window instead")
	f.IntVar(&bias, "bias", 10, "adaptive threshold bias")
	f.IntVar(&dilate, "dilate", 0, "dilate the mask by this radius")
	f.Float64Var(&sharpen, "sharpen", 0, "sharpen sigma applied before thresholding")
	f.Float64Var(&contrast, "contrast", 0, "contrast adjustment (-100..100) applied before thresholding")
	if err := cmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	in := args[0]
	content, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	src, err := imagesource.Decode(content, imagesource.Options{})
	if err != nil {
		return fmt.Errorf("decode %s: %w", in, err)
	}
	img := src.Image
	if sharpen > 0 {
		img = imaging.Sharpen(img, sharpen)
	}
	if contrast != 0 {
		img = imaging.AdjustContrast(img, contrast)
	}

	var m *contour.Mask
	if adaptive > 0 {
		m = contour.AdaptiveFromImage(img, adaptive, bias)
	} else {
		if threshold < 0 || threshold > 255 {
			return fmt.Errorf("threshold must be in 0..255")
		}
		m = contour.FromImage(img, uint8(threshold))
	}
	m = m.Dilate(dilate)

	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".mask.png"
	}
	if err := imaging.Save(m.Image(), out); err != nil {
		return err
	}
	regions := len(contour.Outlines(m))
	color.New(color.FgGreen).Printf("wrote %s", out)
	fmt.Printf(" (%dx%d, %d ink pixels, %d regions)\n", m.Width, m.Height, m.Count(), regions)
	return nil
}
