package degrade

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// kernelTruncate is the kernel radius in standard deviations
const kernelTruncate = 4.0

// gaussianKernel returns the normalised 1-D kernel for sigma, indexed from -radius to radius.
func gaussianKernel(sigma float64) []float64 {
	radius := int(kernelTruncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		w := math.Exp(-0.5 * float64(i*i) / (sigma * sigma))
		kernel[i+radius] = w
		sum += w
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// mirrorIndex reflects i into [0, n) about the edge samples without repeating them (d c b | a b c d | c b a).
func mirrorIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}

// GaussianBlur blurs the colour channels of img independently with an isotropic Gaussian of
// standard deviation sigma. Borders are mirrored; alpha is copied unchanged.
func GaussianBlur(img image.Image, sigma float64) *image.NRGBA {
	src := imaging.Clone(img)
	if sigma <= 0 {
		return src
	}

	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(dst.Pix, src.Pix)

	plane := make([]float64, w*h)
	tmp := make([]float64, w*h)

	for ch := 0; ch < 3; ch++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				plane[y*w+x] = float64(src.Pix[y*src.Stride+x*4+ch])
			}
		}

		// along rows (y axis) first, then columns
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				var acc float64
				for k := -radius; k <= radius; k++ {
					acc += kernel[k+radius] * plane[mirrorIndex(y+k, h)*w+x]
				}
				tmp[y*w+x] = acc
			}
		}
		for y := 0; y < h; y++ {
			row := tmp[y*w : (y+1)*w]
			for x := 0; x < w; x++ {
				var acc float64
				for k := -radius; k <= radius; k++ {
					acc += kernel[k+radius] * row[mirrorIndex(x+k, w)]
				}
				dst.Pix[y*dst.Stride+x*4+ch] = clampUint8(acc)
			}
		}
	}
	return dst
}

// Feather softens the hard edges of a mask with a small Gaussian blur so the sharp/blurred
// transition of the composite is smooth.
func Feather(m *image.Gray, radius float64) *image.Gray {
	bounds := m.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	if radius <= 0 {
		for y := 0; y < bounds.Dy(); y++ {
			copy(out.Pix[y*out.Stride:y*out.Stride+bounds.Dx()], m.Pix[m.PixOffset(bounds.Min.X, bounds.Min.Y+y):])
		}
		return out
	}

	blurred := imaging.Blur(m, radius)
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			out.Pix[y*out.Stride+x] = blurred.Pix[y*blurred.Stride+x*4]
		}
	}
	return out
}

func clampUint8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
