package processing

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 4), B: 90, A: 255})
		}
	}
	return img
}

func TestSaveAndLoadFormats(t *testing.T) {
	p := NewProcessor()
	dir := t.TempDir()

	for _, ext := range []string{"png", "jpg", "tiff", "bmp", "webp"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "nested", "sample."+ext)
			require.NoError(t, p.SaveImage(createTestImage(40, 30), path))

			img, err := p.LoadImage(path)
			require.NoError(t, err)
			assert.Equal(t, 40, img.Bounds().Dx())
			assert.Equal(t, 30, img.Bounds().Dy())
		})
	}
}

func TestLosslessFormatsKeepPixels(t *testing.T) {
	p := NewProcessor()
	dir := t.TempDir()
	src := createTestImage(16, 16)

	for _, ext := range []string{"png", "tiff", "webp"} {
		path := filepath.Join(dir, "lossless."+ext)
		require.NoError(t, p.SaveImage(src, path))

		img, err := p.LoadImage(path)
		require.NoError(t, err)
		assert.Equal(t, src.Pix, ToNRGBA(img).Pix, ext)
	}
}

func TestSaveGrayMask(t *testing.T) {
	p := NewProcessor()
	path := filepath.Join(t.TempDir(), "mask.png")

	m := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range m.Pix {
		if i%2 == 0 {
			m.Pix[i] = 255
		}
	}
	require.NoError(t, p.SaveImage(m, path))

	img, err := p.LoadImage(path)
	require.NoError(t, err)
	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	r, _, _, _ = img.At(1, 0).RGBA()
	assert.Equal(t, uint32(0), r)
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	_, err := NewProcessor().DecodeImage(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestLoadImageMissingFile(t *testing.T) {
	_, err := NewProcessor().LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestToNRGBA(t *testing.T) {
	src := createTestImage(5, 5)
	assert.Same(t, src, ToNRGBA(src))

	sub := src.SubImage(image.Rect(1, 1, 4, 4))
	out := ToNRGBA(sub)
	assert.Equal(t, image.Rect(0, 0, 3, 3), out.Bounds())
	assert.Equal(t, src.NRGBAAt(1, 1), out.NRGBAAt(0, 0))
}
