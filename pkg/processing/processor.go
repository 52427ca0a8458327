package processing

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/docblur/internal/utils"
)

// Options controls output encoding
type Options struct {
	JPEGQuality  int
	WebPLossless bool
	WebPQuality  int
}

// DefaultOptions returns the encoder settings used for dataset output
func DefaultOptions() Options {
	return Options{
		JPEGQuality:  95,
		WebPLossless: true,
		WebPQuality:  90,
	}
}

// Processor handles image decoding and encoding
type Processor struct {
	opts Options
}

// NewProcessor creates a new image processor with default options
func NewProcessor() *Processor {
	return &Processor{opts: DefaultOptions()}
}

// NewProcessorWithOptions creates a new image processor with custom options
func NewProcessorWithOptions(opts Options) *Processor {
	return &Processor{opts: opts}
}

// LoadImage loads an image from a file path with WebP support
func (p *Processor) LoadImage(path string) (image.Image, error) {
	// Try imaging.Open (registered decoders)
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := p.DecodeImage(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// DecodeImage decodes an image from a reader, falling back to the WebP decoder
func (p *Processor) DecodeImage(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// ToNRGBA converts any image to an NRGBA copy with bounds starting at the origin
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}

// SaveImage saves an image to path, choosing the encoder from the file extension.
// Parent directories are created as needed.
func (p *Processor) SaveImage(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	switch utils.GetFileExtension(path) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		opts := &webp.Options{Lossless: p.opts.WebPLossless, Quality: float32(p.opts.WebPQuality)}
		if err := webp.Encode(f, img, opts); err != nil {
			f.Close()
			return fmt.Errorf("failed to encode webp: %w", err)
		}
		return f.Close()
	case "jpg", "jpeg":
		return imaging.Save(img, path, imaging.JPEGQuality(p.opts.JPEGQuality))
	default: // png, tif, tiff, bmp, gif
		return imaging.Save(img, path)
	}
}
