// Package contour turns picklist photos into binary ink masks and extracts
// the outer outlines of their connected ink regions.
package contour

import (
	"image"

	"github.com/disintegration/imaging"
)

// DefaultThreshold is the gray level at or below which a pixel counts as ink.
const DefaultThreshold uint8 = 180

// Mask is a two-valued raster; 1 marks ink (foreground), 0 paper.
type Mask struct {
	Width  int
	Height int
	Pix    []byte
}

// NewMask returns an all-background mask.
func NewMask(w, h int) *Mask {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Mask{Width: w, Height: h, Pix: make([]byte, w*h)}
}

// At reports whether (x, y) is ink. Coordinates outside the mask are paper.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] != 0
}

// Set marks (x, y) as ink or paper; out-of-range writes are ignored.
func (m *Mask) Set(x, y int, ink bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	var v byte
	if ink {
		v = 1
	}
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of ink pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Image renders the mask as white ink on black, the layout OpenCV expects.
func (m *Mask) Image() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		if v != 0 {
			out.Pix[i] = 255
		}
	}
	return out
}

// FromImage converts img to grayscale and applies an inverse binary
// threshold: pixels with gray <= threshold become ink.
func FromImage(img image.Image, threshold uint8) *Mask {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+m.Width*4]
		for x := 0; x < m.Width; x++ {
			if row[x*4] <= threshold {
				m.Pix[y*m.Width+x] = 1
			}
		}
	}
	return m
}

// AdaptiveFromImage thresholds each pixel against the mean of its window
// minus bias, which copes better with uneven lighting on phone photos.
func AdaptiveFromImage(img image.Image, window int, bias int) *Mask {
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	gray := imaging.Grayscale(img)
	w := gray.Bounds().Dx()
	h := gray.Bounds().Dy()
	m := NewMask(w, h)
	if w == 0 || h == 0 {
		return m
	}
	lum := func(x, y int) int { return int(gray.Pix[y*gray.Stride+x*4]) }
	half := window / 2
	ints := make([]int, w*h)
	for y := 0; y < h; y++ {
		rowSum := 0
		for x := 0; x < w; x++ {
			rowSum += lum(x, y)
			idx := y*w + x
			if y == 0 {
				ints[idx] = rowSum
			} else {
				ints[idx] = ints[(y-1)*w+x] + rowSum
			}
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := x-half, y-half
			x1, y1 := x+half, y+half
			if x0 < 0 {
				x0 = 0
			}
			if y0 < 0 {
				y0 = 0
			}
			if x1 >= w {
				x1 = w - 1
			}
			if y1 >= h {
				y1 = h - 1
			}
			sum := ints[y1*w+x1]
			if x0 > 0 {
				sum -= ints[y1*w+x0-1]
			}
			if y0 > 0 {
				sum -= ints[(y0-1)*w+x1]
			}
			if x0 > 0 && y0 > 0 {
				sum += ints[(y0-1)*w+x0-1]
			}
			mean := sum / ((x1 - x0 + 1) * (y1 - y0 + 1))
			th := mean - bias
			if th < 0 {
				th = 0
			}
			if lum(x, y) < th {
				m.Pix[y*w+x] = 1
			}
		}
	}
	return m
}

// Dilate grows ink by radius steps of 4-neighbourhood dilation, joining
// pen strokes broken by a faint scan.
func (m *Mask) Dilate(radius int) *Mask {
	cur := m
	for r := 0; r < radius; r++ {
		next := NewMask(cur.Width, cur.Height)
		for y := 0; y < cur.Height; y++ {
			for x := 0; x < cur.Width; x++ {
				if cur.At(x, y) || cur.At(x+1, y) || cur.At(x-1, y) || cur.At(x, y+1) || cur.At(x, y-1) {
					next.Pix[y*cur.Width+x] = 1
				}
			}
		}
		cur = next
	}
	return cur
}
