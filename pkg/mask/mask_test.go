package mask

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/docblur/pkg/rng"
)

func valuesOf(m *image.Gray) map[uint8]int {
	counts := map[uint8]int{}
	for _, v := range m.Pix {
		counts[v]++
	}
	return counts
}

func TestHorizontalBandRows(t *testing.T) {
	tests := []struct {
		name           string
		w, h           int
		t0, t1, w0, w1 float64
	}{
		{name: "straight full width", w: 64, h: 48, t0: 0.3, t1: 0.3, w0: 1, w1: 1},
		{name: "tilted full width", w: 50, h: 50, t0: 0.1, t1: 0.8, w0: 1, w1: 1},
		{name: "tilted narrow", w: 80, h: 40, t0: 0.2, t1: 0.7, w0: 0.1, w1: 0.35},
		{name: "single row", w: 20, h: 1, t0: 0.25, t1: 0.75, w0: 0.5, w1: 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := HorizontalBand(tt.w, tt.h, tt.t0, tt.t1, tt.w0, tt.w1, false)
			require.Equal(t, image.Rect(0, 0, tt.w, tt.h), m.Bounds())

			for v := range valuesOf(m) {
				assert.True(t, v == Low || v == High, "unexpected level %d", v)
			}

			for y := 0; y < tt.h; y++ {
				f := 0.0
				if tt.h > 1 {
					f = float64(y) / float64(tt.h-1)
				}
				start := tt.t0 + (tt.t1-tt.t0)*f
				end := start + tt.w0 + (tt.w1-tt.w0)*f
				s := int(math.Min(math.RoundToEven(start*float64(tt.w)), float64(tt.w)))
				e := int(math.Min(math.RoundToEven(end*float64(tt.w)), float64(tt.w)))

				for x := 0; x < tt.w; x++ {
					want := High
					if x >= s && x < e {
						want = Low
					}
					require.Equal(t, want, m.GrayAt(x, y).Y, "row %d col %d", y, x)
				}
			}
		})
	}
}

func TestVerticalBandIsTransposeOfHorizontal(t *testing.T) {
	h := HorizontalBand(40, 40, 0.2, 0.6, 0.15, 0.3, false)
	v := VerticalBand(40, 40, 0.2, 0.6, 0.15, 0.3, false)

	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			require.Equal(t, h.GrayAt(x, y).Y, v.GrayAt(y, x).Y)
		}
	}
}

func TestInvertSwapsLevels(t *testing.T) {
	shapes := []Shape{
		Band{Kind: NarrowHorizontal, Orientation: Horizontal, T0: 0.2, T1: 0.5, W0: 0.2, W1: 0.3},
		Band{Kind: TiltedVertical, Orientation: Vertical, T0: 0.4, T1: 0.1, W0: 1, W1: 1},
		EllipseShape{CX: 0.5, CY: 0.4, RX: 0.3, RY: 0.2, Rotation: 35},
	}

	for _, s := range shapes {
		t.Run(s.Family().String(), func(t *testing.T) {
			plain := s.Render(33, 27)
			var inverted *image.Gray
			switch v := s.(type) {
			case Band:
				v.Invert = true
				inverted = v.Render(33, 27)
			case EllipseShape:
				v.Invert = true
				inverted = v.Render(33, 27)
			}
			for i := range plain.Pix {
				require.Equal(t, 255-plain.Pix[i], inverted.Pix[i])
			}
		})
	}
}

func TestEllipse(t *testing.T) {
	m := Ellipse(100, 100, 0.5, 0.5, 0.2, 0.1, 0, false)

	assert.Equal(t, Low, m.GrayAt(50, 50).Y, "centre is inside")
	assert.Equal(t, Low, m.GrayAt(68, 50).Y, "inside along the x semi-axis")
	assert.Equal(t, High, m.GrayAt(50, 62).Y, "outside along y")
	assert.Equal(t, High, m.GrayAt(0, 0).Y)

	rotated := Ellipse(100, 100, 0.5, 0.5, 0.2, 0.1, 90, false)
	assert.Equal(t, Low, rotated.GrayAt(50, 68).Y, "rotation swaps axes")
	assert.Equal(t, High, rotated.GrayAt(68, 50).Y)

	// rotation is periodic in 180 degrees
	a := Ellipse(60, 60, 0.4, 0.6, 0.3, 0.15, 30, false)
	b := Ellipse(60, 60, 0.4, 0.6, 0.3, 0.15, -150, false)
	assert.Equal(t, a.Pix, b.Pix)
}

func TestEllipseDegenerateRadius(t *testing.T) {
	m := Ellipse(5, 5, 0.5, 0.5, 0.1, 0.1, 0, false)
	assert.Equal(t, map[uint8]int{High: 25}, valuesOf(m))
}

func TestSubtractModulo(t *testing.T) {
	a := image.NewGray(image.Rect(0, 0, 2, 1))
	b := image.NewGray(image.Rect(0, 0, 2, 1))
	a.Pix = []uint8{0, 255}
	b.Pix = []uint8{255, 0}

	out := SubtractModulo(a, b)
	assert.Equal(t, []uint8{1, 255}, out.Pix)
}

func TestRandomShapeDeterministic(t *testing.T) {
	a := rng.New(11)
	b := rng.New(11)
	for i := 0; i < 50; i++ {
		ma, sa := Random(a, 32, 32)
		mb, sb := Random(b, 32, 32)
		require.Equal(t, sa, sb)
		require.Equal(t, ma.Pix, mb.Pix)
	}
}

func TestRandomShapeCoversFamilies(t *testing.T) {
	r := rng.New(5)
	seen := map[Family]bool{}
	for i := 0; i < 500; i++ {
		s := RandomShape(r)
		seen[s.Family()] = true

		switch v := s.(type) {
		case Band:
			assert.GreaterOrEqual(t, v.T0, minPosition)
			assert.Less(t, v.T0, maxPosition)
			if v.W0 != 1 {
				assert.GreaterOrEqual(t, v.W0, minWidth)
				assert.Less(t, v.W1, maxWidth)
			}
		case EllipseShape:
			assert.GreaterOrEqual(t, v.Rotation, -maxRotation)
			assert.Less(t, v.Rotation, maxRotation)
			assert.GreaterOrEqual(t, v.RX, minRadius)
		}
	}
	assert.Len(t, seen, int(numFamilies))
}

func TestStraightBandsAreUntilted(t *testing.T) {
	r := rng.New(9)
	for i := 0; i < 200; i++ {
		if b, ok := RandomShape(r).(Band); ok && (b.Kind == StraightHorizontal || b.Kind == StraightVertical) {
			assert.Equal(t, b.T0, b.T1)
			assert.Equal(t, 1.0, b.W0)
			assert.Equal(t, 1.0, b.W1)
		}
	}
}

func BenchmarkEllipse(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Ellipse(384, 384, 0.5, 0.5, 0.3, 0.2, 45, false)
	}
}

func BenchmarkHorizontalBand(b *testing.B) {
	for i := 0; i < b.N; i++ {
		HorizontalBand(384, 384, 0.2, 0.7, 0.1, 0.3, false)
	}
}
