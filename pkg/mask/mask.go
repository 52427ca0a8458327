// Package mask draws the single-channel spatial masks that decide which parts of a crop
// stay sharp (High) and which are blurred (Low).
package mask

import (
	"image"
	"math"
)

// Mask levels
const (
	Low  uint8 = 0
	High uint8 = 255
)

func levels(invert bool) (fill, background uint8) {
	if invert {
		return High, Low
	}
	return Low, High
}

func newFilled(w, h int, v uint8) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, w, h))
	if v != 0 {
		for i := range m.Pix {
			m.Pix[i] = v
		}
	}
	return m
}

// lerp interpolates between a and b at step i of n samples, matching an evenly spaced range
func lerp(a, b float64, i, n int) float64 {
	if n <= 1 {
		return a
	}
	return a + (b-a)*float64(i)/float64(n-1)
}

// span converts the fractional band [t, t+w) at step i into clamped pixel indices along an axis of length size
func span(t0, t1, w0, w1 float64, i, n, size int) (int, int) {
	start := lerp(t0, t1, i, n)
	end := start + lerp(w0, w1, i, n)
	return clampIndex(math.RoundToEven(start*float64(size)), size),
		clampIndex(math.RoundToEven(end*float64(size)), size)
}

func clampIndex(v float64, size int) int {
	if v < 0 {
		return 0
	}
	if v > float64(size) {
		return size
	}
	return int(v)
}

// HorizontalBand draws a band whose left and right edges are straight lines running from
// row 0 to row h-1. Row r covers columns [round(t(r)*w), round((t(r)+w(r))*w)) where t and
// the band width are interpolated linearly from (t0, w0) to (t1, w1).
func HorizontalBand(w, h int, t0, t1, w0, w1 float64, invert bool) *image.Gray {
	fill, background := levels(invert)
	m := newFilled(w, h, background)
	for y := 0; y < h; y++ {
		start, end := span(t0, t1, w0, w1, y, h, w)
		row := m.Pix[y*m.Stride : y*m.Stride+w]
		for x := start; x < end; x++ {
			row[x] = fill
		}
	}
	return m
}

// VerticalBand is the transpose of HorizontalBand: column c covers rows
// [round(t(c)*h), round((t(c)+w(c))*h)).
func VerticalBand(w, h int, t0, t1, w0, w1 float64, invert bool) *image.Gray {
	fill, background := levels(invert)
	m := newFilled(w, h, background)
	for x := 0; x < w; x++ {
		start, end := span(t0, t1, w0, w1, x, w, h)
		for y := start; y < end; y++ {
			m.Pix[y*m.Stride+x] = fill
		}
	}
	return m
}

// Ellipse fills the interior of an ellipse centred at (cx*w, cy*h) with semi-axes
// (rx*w, ry*h), rotated by rotation degrees. Centre and radii are truncated to whole pixels.
func Ellipse(w, h int, cx, cy, rx, ry, rotation float64, invert bool) *image.Gray {
	fill, background := levels(invert)
	m := newFilled(w, h, background)

	row0, col0 := float64(int(cy*float64(h))), float64(int(cx*float64(w)))
	rowRad, colRad := float64(int(ry*float64(h))), float64(int(rx*float64(w)))
	if rowRad <= 0 || colRad <= 0 {
		return m
	}

	alpha := math.Mod(rotation*math.Pi/180, math.Pi)
	if alpha < 0 {
		alpha += math.Pi
	}
	sin, cos := math.Sincos(alpha)

	for y := 0; y < h; y++ {
		r := float64(y) - row0
		for x := 0; x < w; x++ {
			c := float64(x) - col0
			a := (r*cos + c*sin) / rowRad
			b := (r*sin - c*cos) / colRad
			if a*a+b*b < 1 {
				m.Pix[y*m.Stride+x] = fill
			}
		}
	}
	return m
}

// SubtractModulo combines two masks of equal size pixel-wise as (a - b) mod 256.
func SubtractModulo(a, b *image.Gray) *image.Gray {
	bounds := a.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			av := a.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y
			bv := b.GrayAt(b.Bounds().Min.X+x, b.Bounds().Min.Y+y).Y
			out.Pix[y*out.Stride+x] = av - bv
		}
	}
	return out
}
