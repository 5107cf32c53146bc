package contour

import (
	"image"
	"math"
)

// Contour is the closed outer outline of one ink region, as pixel
// coordinates in tracing order.
type Contour struct {
	Points []image.Point
}

// Area is the absolute shoelace area of the outline polygon.
func (c Contour) Area() float64 {
	n := len(c.Points)
	if n < 3 {
		return 0
	}
	var s float64
	for i := 0; i < n; i++ {
		p := c.Points[i]
		q := c.Points[(i+1)%n]
		s += float64(p.X*q.Y - q.X*p.Y)
	}
	return math.Abs(s) / 2
}

// Perimeter is the length of the closed outline.
func (c Contour) Perimeter() float64 {
	n := len(c.Points)
	if n < 2 {
		return 0
	}
	var s float64
	for i := 0; i < n; i++ {
		s += dist(c.Points[i], c.Points[(i+1)%n])
	}
	return s
}

// Bounds returns the bounding rectangle of the outline (max exclusive).
func (c Contour) Bounds() image.Rectangle {
	if len(c.Points) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: c.Points[0], Max: c.Points[0].Add(image.Pt(1, 1))}
	for _, p := range c.Points[1:] {
		r = r.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	return r
}

// SimplifiedVertices implements marks.Shape.
func (c Contour) SimplifiedVertices(epsilon float64) int {
	return len(Simplify(c.Points, epsilon))
}

// Simplify approximates a closed polygon with the Douglas-Peucker
// algorithm: the outline is split at the vertex farthest from the first
// one and each half is reduced until no dropped vertex lies farther than
// epsilon from its chord.
func Simplify(pts []image.Point, epsilon float64) []image.Point {
	n := len(pts)
	if n <= 2 {
		return append([]image.Point(nil), pts...)
	}
	if epsilon <= 0 {
		return dedupe(pts)
	}
	far, best := 0, -1.0
	for i := 1; i < n; i++ {
		if d := dist(pts[0], pts[i]); d > best {
			far, best = i, d
		}
	}
	if best == 0 {
		return []image.Point{pts[0]}
	}
	first := douglasPeucker(pts[:far+1], epsilon)
	tail := make([]image.Point, 0, n-far+1)
	tail = append(tail, pts[far:]...)
	tail = append(tail, pts[0])
	second := douglasPeucker(tail, epsilon)
	out := make([]image.Point, 0, len(first)+len(second))
	out = append(out, first...)
	out = append(out, second[1:len(second)-1]...)
	return out
}

func douglasPeucker(pts []image.Point, epsilon float64) []image.Point {
	n := len(pts)
	if n <= 2 {
		return append([]image.Point(nil), pts...)
	}
	a, b := pts[0], pts[n-1]
	idx, best := 0, -1.0
	for i := 1; i < n-1; i++ {
		if d := lineDist(pts[i], a, b); d > best {
			idx, best = i, d
		}
	}
	if best <= epsilon {
		return []image.Point{a, b}
	}
	left := douglasPeucker(pts[:idx+1], epsilon)
	right := douglasPeucker(pts[idx:], epsilon)
	return append(left[:len(left)-1], right...)
}

// lineDist is the distance from p to the line through a and b, or to a
// when a and b coincide.
func lineDist(p, a, b image.Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	l := math.Hypot(dx, dy)
	if l == 0 {
		return dist(p, a)
	}
	cross := dx*float64(p.Y-a.Y) - dy*float64(p.X-a.X)
	return math.Abs(cross) / l
}

func dist(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

func dedupe(pts []image.Point) []image.Point {
	out := make([]image.Point, 0, len(pts))
	for i, p := range pts {
		if i > 0 && p == pts[i-1] {
			continue
		}
		out = append(out, p)
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}
