package cropper

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/menta2k/docblur/pkg/rng"
	"github.com/menta2k/docblur/pkg/types"
)

// ErrTooSmall is returned when the requested crop size does not fit in the image
var ErrTooSmall = errors.New("image is too small for the configured size")

// ErrRegionTooSmall is returned when a bounding box region is below the minimum region size
var ErrRegionTooSmall = errors.New("cropped region is too small")

// DefaultMinRegionSize is the smallest accepted bounding box crop in either dimension
const DefaultMinRegionSize = 16

// SizeOptions controls how the square crop size is derived from an image
type SizeOptions struct {
	// MaxSize caps the crop size
	MaxSize int
	// DivisibleBy floors the size to a multiple of this value when positive
	DivisibleBy int
	// ExactSize overrides the size when positive; it must fit in the image
	ExactSize int
}

// Size returns the square crop size for an image of width x height.
func Size(width, height int, opts SizeOptions) (int, error) {
	if opts.ExactSize > 0 {
		if opts.ExactSize > min(width, height) {
			return 0, fmt.Errorf("%w: %d exceeds %dx%d", ErrTooSmall, opts.ExactSize, width, height)
		}
		return opts.ExactSize, nil
	}

	size := min(width, height)
	if opts.MaxSize > 0 {
		size = min(size, opts.MaxSize)
	}
	if opts.DivisibleBy > 0 {
		size = opts.DivisibleBy * (size / opts.DivisibleBy)
	}
	if size <= 0 {
		return 0, fmt.Errorf("%w: no crop fits in %dx%d", ErrTooSmall, width, height)
	}
	return size, nil
}

// CropResult contains a square crop and where it was taken from
type CropResult struct {
	Image  *image.NRGBA
	Origin image.Point
	Size   int
}

// RandomSquare draws a crop origin uniformly so that a size x size crop fits inside img.
// The x offset is drawn before the y offset.
func RandomSquare(r rng.Source, img image.Image, size int) (CropResult, error) {
	bounds := img.Bounds()
	if size <= 0 || size > bounds.Dx() || size > bounds.Dy() {
		return CropResult{}, fmt.Errorf("%w: %d in %dx%d", ErrTooSmall, size, bounds.Dx(), bounds.Dy())
	}

	x := rng.Between(r, 0, bounds.Dx()-size)
	y := rng.Between(r, 0, bounds.Dy()-size)
	rect := image.Rect(x, y, x+size, y+size).Add(bounds.Min)

	return CropResult{
		Image:  imaging.Crop(img, rect),
		Origin: image.Pt(x, y),
		Size:   size,
	}, nil
}

// Region crops img to the rectangle spanned by a bounding box. Regions smaller than
// minSize in either dimension are rejected with ErrRegionTooSmall.
func Region(img image.Image, box types.Quad, minSize int) (*image.NRGBA, error) {
	bounds := img.Bounds()
	rect := box.Rect().Add(bounds.Min).Intersect(bounds)
	if rect.Dx() < minSize || rect.Dy() < minSize {
		return nil, fmt.Errorf("%w: %dx%d for box %s", ErrRegionTooSmall, rect.Dx(), rect.Dy(), box)
	}
	return imaging.Crop(img, rect), nil
}
