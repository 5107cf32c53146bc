// Package cvcontour extracts mark regions with OpenCV through gocv. It
// registers itself with the contour package as the "opencv" extractor.
package cvcontour

import (
	"fmt"
	"image"
	"sort"

	"gocv.io/x/gocv"

	"picklist/pkg/contour"
	"picklist/pkg/marks"
)

func init() {
	contour.Register("opencv", func() contour.Extractor { return Extractor{} })
}

// Extractor runs findContours with external retrieval and simple chain
// approximation. Regions come back in the same top-left scan order as the
// native tracer.
type Extractor struct{}

func (Extractor) Name() string { return "opencv" }

func (Extractor) Extract(m *contour.Mask) ([]marks.Shape, error) {
	if m == nil || m.Width == 0 || m.Height == 0 {
		return []marks.Shape{}, nil
	}
	mat, err := gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8U, m.Image().Pix)
	if err != nil {
		return nil, fmt.Errorf("mask to mat: %w", err)
	}
	defer mat.Close()

	contours := gocv.FindContours(mat, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	found := make([]shape, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		pv := contours.At(i)
		found = append(found, shape{
			area:      gocv.ContourArea(pv),
			perimeter: gocv.ArcLength(pv, true),
			points:    pv.ToPoints(),
		})
	}
	// findContours lists outer contours newest first.
	sort.SliceStable(found, func(i, j int) bool {
		a, b := found[i].topLeft(), found[j].topLeft()
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	out := make([]marks.Shape, len(found))
	for i, s := range found {
		out[i] = s
	}
	return out, nil
}

type shape struct {
	area      float64
	perimeter float64
	points    []image.Point
}

// topLeft is the first pixel of the region a raster scan meets.
func (s shape) topLeft() image.Point {
	if len(s.points) == 0 {
		return image.Point{}
	}
	best := s.points[0]
	for _, p := range s.points[1:] {
		if p.Y < best.Y || (p.Y == best.Y && p.X < best.X) {
			best = p
		}
	}
	return best
}

func (s shape) Area() float64      { return s.area }
func (s shape) Perimeter() float64 { return s.perimeter }

func (s shape) SimplifiedVertices(epsilon float64) int {
	pv := gocv.NewPointVectorFromPoints(s.points)
	defer pv.Close()
	approx := gocv.ApproxPolyDP(pv, epsilon, true)
	defer approx.Close()
	return approx.Size()
}
