package types

import (
	"fmt"
	"image"
	"sort"
)

// Point is an integer pixel coordinate
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Quad is a four-point bounding polygon with its points sorted by (x, y)
type Quad [4]Point

// NewQuad sorts the given points and returns them as a Quad
func NewQuad(points [4]Point) Quad {
	q := Quad(points)
	sort.Slice(q[:], func(i, j int) bool {
		if q[i].X != q[j].X {
			return q[i].X < q[j].X
		}
		return q[i].Y < q[j].Y
	})
	return q
}

// Rect returns the crop rectangle spanned by the first and fourth sorted points
func (q Quad) Rect() image.Rectangle {
	return image.Rect(q[0].X, q[0].Y, q[3].X, q[3].Y)
}

func (q Quad) String() string {
	return fmt.Sprintf("[(%d,%d) (%d,%d) (%d,%d) (%d,%d)]",
		q[0].X, q[0].Y, q[1].X, q[1].Y, q[2].X, q[2].Y, q[3].X, q[3].Y)
}

// Category classifies a bounding box by its position in the annotation list
type Category int

// Known bounding box categories
const (
	Computer    Category = 0
	Handwritten Category = 1
)

// Known reports whether c has a name
func (c Category) Known() bool {
	return c == Computer || c == Handwritten
}

func (c Category) String() string {
	switch c {
	case Computer:
		return "computer"
	case Handwritten:
		return "handwritten"
	default:
		return fmt.Sprintf("category%d", int(c))
	}
}

// Destination identifies where a sample is persisted. The sink owns path formatting.
type Destination struct {
	// Category is empty for whole-image samples
	Category string `json:"category,omitempty"`
	// BlurTag is the sigma sub-folder, empty unless outputs are separated by blur
	BlurTag string `json:"blur,omitempty"`
	// Index is the crop attempt index, -1 for whole-image samples
	Index int `json:"index"`
}

// Indexed reports whether the destination carries a crop index
func (d Destination) Indexed() bool {
	return d.Index >= 0
}

// Sample is one generated pair: the ground-truth mask and the partially blurred image
type Sample struct {
	Mask   *image.Gray
	Source *image.NRGBA
	Sigma  float64
	// Shapes names the mask families the mask was built from
	Shapes []string
	// Origin is the top-left corner of the crop within the processed region
	Origin image.Point
	Size   int
}
