// Package degrade builds one training pair from a source crop: a spatial mask (ground truth)
// and the composite in which the sharp crop shows through the mask's high regions and a
// Gaussian-blurred copy shows through its low regions.
package degrade

import (
	"fmt"
	"image"

	"github.com/menta2k/docblur/pkg/cropper"
	"github.com/menta2k/docblur/pkg/mask"
	"github.com/menta2k/docblur/pkg/rng"
	"github.com/menta2k/docblur/pkg/types"
)

// Defaults used by New
const (
	DefaultCombineProbability = 0.1
	DefaultFeatherRadius      = 2.0
)

// Config holds configuration for the compositor
type Config struct {
	Size cropper.SizeOptions
	// CombineProbability is the chance of subtracting a second random mask from the first
	CombineProbability float64
	// FeatherRadius is the sigma of the blur that softens mask edges before compositing
	FeatherRadius float64
}

// Compositor produces degraded samples
type Compositor struct {
	config Config
}

// New creates a Compositor with default configuration and the given maximum crop size
func New(maxSize int) *Compositor {
	return &Compositor{
		config: Config{
			Size:               cropper.SizeOptions{MaxSize: maxSize},
			CombineProbability: DefaultCombineProbability,
			FeatherRadius:      DefaultFeatherRadius,
		},
	}
}

// NewWithConfig creates a Compositor with custom configuration
func NewWithConfig(config Config) *Compositor {
	return &Compositor{config: config}
}

// Config returns the compositor configuration
func (c *Compositor) Config() Config {
	return c.config
}

// Result contains one composited sample
type Result struct {
	// Image is the partially blurred crop
	Image *image.NRGBA
	// Mask is the ground truth, before feathering
	Mask *image.Gray
	// Shapes lists the mask shapes in draw order; two shapes mean they were combined
	Shapes []mask.Shape
	Origin image.Point
	Size   int
	Sigma  float64
}

// Sample converts the result into the value handed to sinks
func (r Result) Sample() types.Sample {
	names := make([]string, len(r.Shapes))
	for i, s := range r.Shapes {
		names[i] = s.Family().String()
	}
	return types.Sample{
		Mask:   r.Mask,
		Source: r.Image,
		Sigma:  r.Sigma,
		Shapes: names,
		Origin: r.Origin,
		Size:   r.Size,
	}
}

// CreateImageAndMask crops img, blurs the crop with sigma and composites sharp and blurred
// versions through a random mask. It returns an error wrapping cropper.ErrTooSmall when the
// configured crop size does not fit.
func (c *Compositor) CreateImageAndMask(r rng.Source, img image.Image, sigma float64) (Result, error) {
	bounds := img.Bounds()
	size, err := cropper.Size(bounds.Dx(), bounds.Dy(), c.config.Size)
	if err != nil {
		return Result{}, err
	}

	crop, err := cropper.RandomSquare(r, img, size)
	if err != nil {
		return Result{}, err
	}

	blurred := GaussianBlur(crop.Image, sigma)

	m, shape := mask.Random(r, size, size)
	shapes := []mask.Shape{shape}
	if r.Float64() > 1-c.config.CombineProbability {
		second, secondShape := mask.Random(r, size, size)
		m = mask.SubtractModulo(m, second)
		shapes = append(shapes, secondShape)
	}

	alpha := Feather(m, c.config.FeatherRadius)
	out, err := Composite(crop.Image, blurred, alpha)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Image:  out,
		Mask:   m,
		Shapes: shapes,
		Origin: crop.Origin,
		Size:   size,
		Sigma:  sigma,
	}, nil
}

// Composite blends sharp and blurred through alpha: alpha 255 keeps the sharp pixel,
// alpha 0 keeps the blurred pixel. All three images must have the same size.
func Composite(sharp, blurred *image.NRGBA, alpha *image.Gray) (*image.NRGBA, error) {
	sb, bb, ab := sharp.Bounds(), blurred.Bounds(), alpha.Bounds()
	if sb.Size() != bb.Size() || sb.Size() != ab.Size() {
		return nil, fmt.Errorf("composite size mismatch: sharp %v, blurred %v, mask %v", sb.Size(), bb.Size(), ab.Size())
	}

	w, h := sb.Dx(), sb.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		si := sharp.PixOffset(sb.Min.X, sb.Min.Y+y)
		bi := blurred.PixOffset(bb.Min.X, bb.Min.Y+y)
		ai := alpha.PixOffset(ab.Min.X, ab.Min.Y+y)
		oi := y * out.Stride
		for x := 0; x < w; x++ {
			a := float64(alpha.Pix[ai+x]) / 255
			for ch := 0; ch < 3; ch++ {
				s := float64(sharp.Pix[si+x*4+ch])
				b := float64(blurred.Pix[bi+x*4+ch])
				out.Pix[oi+x*4+ch] = clampUint8(b + (s-b)*a)
			}
			out.Pix[oi+x*4+3] = sharp.Pix[si+x*4+3]
		}
	}
	return out, nil
}
