// Package quality rejects degenerate samples, such as crops of blank paper.
package quality

import (
	"image"

	"github.com/disintegration/imaging"
)

// DefaultWhiteThreshold is the largest accepted share of near-white channel values
const DefaultWhiteThreshold = 0.90

// whiteLevel is the channel value above which a sample counts as saturated white
const whiteLevel = 250

// WhiteFraction returns the share of channel values above 250 over all pixels.
// Gray images contribute one channel per pixel, colour images three.
func WhiteFraction(img image.Image) float64 {
	var white, total int

	switch m := img.(type) {
	case *image.Gray:
		b := m.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := m.Pix[m.PixOffset(b.Min.X, y) : m.PixOffset(b.Min.X, y)+b.Dx()]
			for _, v := range row {
				if v > whiteLevel {
					white++
				}
			}
			total += b.Dx()
		}
	default:
		n := imaging.Clone(img)
		for i := 0; i < len(n.Pix); i += 4 {
			for ch := 0; ch < 3; ch++ {
				if n.Pix[i+ch] > whiteLevel {
					white++
				}
			}
			total += 3
		}
	}

	if total == 0 {
		return 0
	}
	return float64(white) / float64(total)
}

// Passes reports whether the white fraction of img is strictly below whiteThreshold.
func Passes(img image.Image, whiteThreshold float64) bool {
	return WhiteFraction(img) < whiteThreshold
}
