// Package marks classifies connected ink regions of a picklist photo as
// check or cross marks using an area band and an outline vertex count.
package marks

// Shape is a connected foreground region as produced by a contour extractor.
type Shape interface {
	// Area of the region's polygonal outline.
	Area() float64
	// Perimeter of the closed outline.
	Perimeter() float64
	// SimplifiedVertices returns the vertex count of the outline after
	// polygon simplification with the given tolerance.
	SimplifiedVertices(epsilon float64) int
}

// Classify labels every shape in input order. The result always has the
// same length as shapes; an empty input yields an empty, non-nil slice.
func Classify(shapes []Shape, cfg Config) []Label {
	out := make([]Label, len(shapes))
	for i, s := range shapes {
		out[i] = ClassifyOne(s, cfg)
	}
	return out
}

// ClassifyOne applies the heuristic to a single shape.
func ClassifyOne(s Shape, cfg Config) Label {
	area := s.Area()
	if area <= cfg.MinArea || area >= cfg.MaxArea {
		return Cross
	}
	perimeter := s.Perimeter()
	if perimeter <= 0 {
		return Cross
	}
	if s.SimplifiedVertices(cfg.SimplifyToleranceFactor*perimeter) > 2 {
		return Check
	}
	return Cross
}
