// Package cvl reads text bounding boxes from CVL database attribute files
// (<dir>/xml/<stem>_attributes.xml next to each scan).
package cvl

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/menta2k/docblur/internal/utils"
	"github.com/menta2k/docblur/pkg/types"
)

// textRegionType is the attrType of AttrRegion elements that enclose text
const textRegionType = "3"

// Parse reads the text regions of an attribute document. Each region's minAreaRect points
// are returned as a sorted Quad, in document order. The input may be UTF-8 or UTF-16 with
// a byte order mark; the encoding named in the XML declaration is ignored.
func Parse(r io.Reader) ([]types.Quad, error) {
	dec := xml.NewDecoder(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var (
		stack   []xml.StartElement
		regions []int // open text region index per AttrRegion level, -1 for other regions
		points  [][]types.Point
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse attributes: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "AttrRegion":
				idx := -1
				if attr(el, "attrType") == textRegionType {
					idx = len(points)
					points = append(points, nil)
				}
				regions = append(regions, idx)
			case "Point":
				if idx, ok := rectOwner(stack, regions); ok {
					p, err := parsePoint(el)
					if err != nil {
						return nil, err
					}
					points[idx] = append(points[idx], p)
				}
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			if stack[len(stack)-1].Name.Local == "AttrRegion" && len(regions) > 0 {
				regions = regions[:len(regions)-1]
			}
			stack = stack[:len(stack)-1]
		}
	}

	quads := make([]types.Quad, 0, len(points))
	for i, pts := range points {
		if len(pts) != 4 {
			return nil, fmt.Errorf("text region %d has %d points, want 4", i, len(pts))
		}
		quads = append(quads, types.NewQuad([4]types.Point(pts)))
	}
	return quads, nil
}

// rectOwner returns the text region owning a Point whose parent is minAreaRect and whose
// grandparent is a text AttrRegion.
func rectOwner(stack []xml.StartElement, regions []int) (int, bool) {
	n := len(stack)
	if n < 2 || stack[n-1].Name.Local != "minAreaRect" || stack[n-2].Name.Local != "AttrRegion" {
		return 0, false
	}
	if len(regions) == 0 || regions[len(regions)-1] < 0 {
		return 0, false
	}
	return regions[len(regions)-1], true
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func parsePoint(el xml.StartElement) (types.Point, error) {
	x, err := strconv.Atoi(strings.TrimSpace(attr(el, "x")))
	if err != nil {
		return types.Point{}, fmt.Errorf("invalid point x: %w", err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(attr(el, "y")))
	if err != nil {
		return types.Point{}, fmt.Errorf("invalid point y: %w", err)
	}
	return types.Point{X: x, Y: y}, nil
}

// AttributesPath returns where the attribute file of an image is expected
func AttributesPath(imagePath string) string {
	return filepath.Join(filepath.Dir(imagePath), "xml", utils.Stem(imagePath)+"_attributes.xml")
}

// Provider looks up the attribute file of each image
type Provider struct{}

// NewProvider creates a CVL bounding box provider
func NewProvider() *Provider {
	return &Provider{}
}

// Boxes returns the text regions of the image at imagePath. ok is false when the image
// has no attribute file.
func (p *Provider) Boxes(imagePath string) (boxes []types.Quad, ok bool, err error) {
	f, err := os.Open(AttributesPath(imagePath))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	boxes, err = Parse(f)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", f.Name(), err)
	}
	return boxes, true, nil
}
