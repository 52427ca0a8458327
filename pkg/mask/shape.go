package mask

import (
	"fmt"
	"image"

	"github.com/menta2k/docblur/pkg/rng"
)

// Family tags the mask shape variants drawn by Random.
type Family int

const (
	StraightVertical Family = iota
	StraightHorizontal
	TiltedHorizontal
	NarrowHorizontal
	TiltedVertical
	NarrowVertical
	RotatedEllipse

	numFamilies
)

var familyNames = [...]string{
	StraightVertical:   "straight-vertical",
	StraightHorizontal: "straight-horizontal",
	TiltedHorizontal:   "tilted-horizontal",
	NarrowHorizontal:   "narrow-horizontal",
	TiltedVertical:     "tilted-vertical",
	NarrowVertical:     "narrow-vertical",
	RotatedEllipse:     "ellipse",
}

func (f Family) String() string {
	if f < 0 || f >= numFamilies {
		return fmt.Sprintf("family%d", int(f))
	}
	return familyNames[f]
}

// Parameter ranges of the random shape families
const (
	minPosition = 0.1
	maxPosition = 0.9
	minWidth    = 0.1
	maxWidth    = 0.4
	minRadius   = 0.1
	maxRadius   = 0.4
	maxRotation = 180.0
)

// Shape is a parametric mask that can be rendered at any size.
type Shape interface {
	Family() Family
	Render(w, h int) *image.Gray
}

// Orientation of a band mask
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// Band is a straight or tilted band; positions and widths are fractions of the image size.
type Band struct {
	Kind        Family      `json:"-"`
	Orientation Orientation `json:"orientation"`
	T0          float64     `json:"t0"`
	T1          float64     `json:"t1"`
	W0          float64     `json:"w0"`
	W1          float64     `json:"w1"`
	Invert      bool        `json:"invert"`
}

// Family returns the family the band was drawn from
func (b Band) Family() Family {
	return b.Kind
}

// Render draws the band at w x h
func (b Band) Render(w, h int) *image.Gray {
	if b.Orientation == Vertical {
		return VerticalBand(w, h, b.T0, b.T1, b.W0, b.W1, b.Invert)
	}
	return HorizontalBand(w, h, b.T0, b.T1, b.W0, b.W1, b.Invert)
}

// EllipseShape is a rotated ellipse; centre and radii are fractions of the image size.
type EllipseShape struct {
	CX       float64 `json:"cx"`
	CY       float64 `json:"cy"`
	RX       float64 `json:"rx"`
	RY       float64 `json:"ry"`
	Rotation float64 `json:"rotation"`
	Invert   bool    `json:"invert"`
}

// Family returns RotatedEllipse
func (e EllipseShape) Family() Family {
	return RotatedEllipse
}

// Render draws the ellipse at w x h
func (e EllipseShape) Render(w, h int) *image.Gray {
	return Ellipse(w, h, e.CX, e.CY, e.RX, e.RY, e.Rotation, e.Invert)
}

// RandomShape draws a family uniformly and then its parameters, in a fixed order:
// band positions t0, t1, widths w0, w1, then invert; ellipse centre, radii, invert, rotation.
func RandomShape(r rng.Source) Shape {
	family := Family(r.IntN(int(numFamilies)))
	switch family {
	case StraightHorizontal, StraightVertical:
		t := rng.Uniform(r, minPosition, maxPosition)
		return Band{Kind: family, Orientation: orientationOf(family), T0: t, T1: t, W0: 1, W1: 1, Invert: rng.Coin(r)}
	case TiltedHorizontal, TiltedVertical:
		t0 := rng.Uniform(r, minPosition, maxPosition)
		t1 := rng.Uniform(r, minPosition, maxPosition)
		return Band{Kind: family, Orientation: orientationOf(family), T0: t0, T1: t1, W0: 1, W1: 1, Invert: rng.Coin(r)}
	case NarrowHorizontal, NarrowVertical:
		t0 := rng.Uniform(r, minPosition, maxPosition)
		t1 := rng.Uniform(r, minPosition, maxPosition)
		w0 := rng.Uniform(r, minWidth, maxWidth)
		w1 := rng.Uniform(r, minWidth, maxWidth)
		return Band{Kind: family, Orientation: orientationOf(family), T0: t0, T1: t1, W0: w0, W1: w1, Invert: rng.Coin(r)}
	default:
		e := EllipseShape{}
		e.CX = rng.Uniform(r, minPosition, maxPosition)
		e.CY = rng.Uniform(r, minPosition, maxPosition)
		e.RX = rng.Uniform(r, minRadius, maxRadius)
		e.RY = rng.Uniform(r, minRadius, maxRadius)
		e.Invert = rng.Coin(r)
		e.Rotation = rng.Uniform(r, -maxRotation, maxRotation)
		return e
	}
}

func orientationOf(f Family) Orientation {
	switch f {
	case StraightVertical, TiltedVertical, NarrowVertical:
		return Vertical
	default:
		return Horizontal
	}
}

// Random draws a shape and renders it at w x h.
func Random(r rng.Source, w, h int) (*image.Gray, Shape) {
	s := RandomShape(r)
	return s.Render(w, h), s
}
