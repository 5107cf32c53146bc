package contour

import "image"

// clockwise neighbour offsets in image coordinates (y grows downward)
var dirs = [8]image.Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

const dirWest = 4

func dirIndex(from, to image.Point) int {
	d := to.Sub(from)
	for i, v := range dirs {
		if v == d {
			return i
		}
	}
	return -1
}

// Outlines returns the outer outline of every 8-connected ink region that
// is not enclosed by another region, ordered by each region's first pixel
// in a top-left raster scan. Straight runs are compressed to their end
// points.
func Outlines(m *Mask) []Contour {
	if m == nil || m.Width == 0 || m.Height == 0 {
		return []Contour{}
	}
	labels, starts := labelRegions(m)
	outside := outsideBackground(m)
	external := make([]bool, len(starts))
	w, h := m.Width, m.Height
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			l := labels[y*w+x]
			if l == 0 || external[l-1] {
				continue
			}
			if x == 0 || y == 0 || x == w-1 || y == h-1 ||
				outside[y*w+x-1] || outside[y*w+x+1] || outside[(y-1)*w+x] || outside[(y+1)*w+x] {
				external[l-1] = true
			}
		}
	}
	out := make([]Contour, 0, len(starts))
	for i, s := range starts {
		if !external[i] {
			continue
		}
		out = append(out, Contour{Points: compress(traceBorder(m, s))})
	}
	return out
}

// labelRegions assigns 1-based labels to 8-connected ink regions in raster
// order and returns each region's first pixel.
func labelRegions(m *Mask) ([]int32, []image.Point) {
	w, h := m.Width, m.Height
	labels := make([]int32, w*h)
	var starts []image.Point
	var stack []image.Point
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if m.Pix[y*w+x] == 0 || labels[y*w+x] != 0 {
				continue
			}
			starts = append(starts, image.Pt(x, y))
			l := int32(len(starts))
			labels[y*w+x] = l
			stack = append(stack[:0], image.Pt(x, y))
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for _, d := range dirs {
					q := p.Add(d)
					if !m.At(q.X, q.Y) || labels[q.Y*w+q.X] != 0 {
						continue
					}
					labels[q.Y*w+q.X] = l
					stack = append(stack, q)
				}
			}
		}
	}
	return labels, starts
}

// outsideBackground flags paper pixels 4-connected to the image border.
func outsideBackground(m *Mask) []bool {
	w, h := m.Width, m.Height
	seen := make([]bool, w*h)
	var stack []image.Point
	push := func(x, y int) {
		if x < 0 || y < 0 || x >= w || y >= h {
			return
		}
		i := y*w + x
		if seen[i] || m.Pix[i] != 0 {
			return
		}
		seen[i] = true
		stack = append(stack, image.Pt(x, y))
	}
	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(p.X+1, p.Y)
		push(p.X-1, p.Y)
		push(p.X, p.Y+1)
		push(p.X, p.Y-1)
	}
	return seen
}

// traceBorder follows the outer border of the region containing start,
// which must be the region's first pixel in raster order.
func traceBorder(m *Mask, start image.Point) []image.Point {
	first := -1
	for k := 0; k < 8; k++ {
		d := (dirWest + k) % 8
		q := start.Add(dirs[d])
		if m.At(q.X, q.Y) {
			first = d
			break
		}
	}
	if first < 0 {
		return []image.Point{start}
	}
	p1 := start.Add(dirs[first])
	prev, cur := p1, start
	var pts []image.Point
	for {
		d := dirIndex(cur, prev)
		next := cur
		for k := 1; k <= 8; k++ {
			dd := (d - k + 8) % 8
			q := cur.Add(dirs[dd])
			if m.At(q.X, q.Y) {
				next = q
				break
			}
		}
		pts = append(pts, cur)
		if next == start && cur == p1 {
			break
		}
		prev, cur = cur, next
	}
	return pts
}

// compress drops points that continue a straight step in the same
// direction, keeping only the corners of the chain.
func compress(pts []image.Point) []image.Point {
	n := len(pts)
	if n <= 2 {
		return pts
	}
	out := make([]image.Point, 0, n)
	for i := 0; i < n; i++ {
		prev := pts[(i-1+n)%n]
		next := pts[(i+1)%n]
		if pts[i].Sub(prev) == next.Sub(pts[i]) {
			continue
		}
		out = append(out, pts[i])
	}
	if len(out) == 0 {
		return pts[:1]
	}
	return out
}
