// Package generator drives dataset generation: it walks the images of a source, draws the
// blur level and crops for each of them, and hands the accepted samples to a sink.
//
// All randomness of a run comes from one rng stream consumed in file order, then
// bounding-box order, then crop-attempt order. With more than one worker every image
// draws from its own stream derived from the run seed and the image's index instead.
package generator

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/menta2k/docblur/pkg/cropper"
	"github.com/menta2k/docblur/pkg/degrade"
	"github.com/menta2k/docblur/pkg/quality"
	"github.com/menta2k/docblur/pkg/rng"
	"github.com/menta2k/docblur/pkg/types"
)

// DefaultBlurLevels are the candidate Gaussian sigmas
var DefaultBlurLevels = []float64{0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1, 1.5, 2, 3, 5}

// Defaults used by DefaultConfig
const (
	DefaultMaxSize  = 384
	DefaultNumCrops = 2
)

// Item is one input image
type Item struct {
	// ID identifies the image to box providers and in logs, usually its path
	ID string
	// Rel is the output name without extension, possibly containing slash separated folders
	Rel string
	// Ext is the output file extension without the dot
	Ext  string
	Open func() (image.Image, error)
}

// ImageSource lists the images of a run in a stable order
type ImageSource interface {
	Items(ctx context.Context) ([]Item, error)
}

// BoxProvider returns the bounding boxes annotated for an image. ok is false when the
// image has no annotations, in which case the whole image is sampled once.
type BoxProvider interface {
	Boxes(id string) (boxes []types.Quad, ok bool, err error)
}

// Sink persists accepted samples. Implementations must be safe for concurrent use when
// the generator runs with more than one worker.
type Sink interface {
	Save(item Item, dst types.Destination, sample types.Sample) error
}

// NoBoxes is a BoxProvider for inputs without annotations
type NoBoxes struct{}

// Boxes always reports no annotations
func (NoBoxes) Boxes(string) ([]types.Quad, bool, error) {
	return nil, false, nil
}

// Config holds the sampling parameters of a run
type Config struct {
	BlurLevels []float64
	// NumCrops is the number of crop attempts per bounding box
	NumCrops       int
	Compositor     degrade.Config
	WhiteThreshold float64
	MinRegionSize  int
	// SeparateByBlur adds the sigma as a sub-folder of every destination
	SeparateByBlur bool
	Workers        int
}

// DefaultConfig returns the sampling parameters used by the command line tool
func DefaultConfig() Config {
	return Config{
		BlurLevels: append([]float64(nil), DefaultBlurLevels...),
		NumCrops:   DefaultNumCrops,
		Compositor: degrade.Config{
			Size:               cropper.SizeOptions{MaxSize: DefaultMaxSize},
			CombineProbability: degrade.DefaultCombineProbability,
			FeatherRadius:      degrade.DefaultFeatherRadius,
		},
		WhiteThreshold: quality.DefaultWhiteThreshold,
		MinRegionSize:  cropper.DefaultMinRegionSize,
		Workers:        1,
	}
}

// Validate checks the sampling parameters
func (c Config) Validate() error {
	if len(c.BlurLevels) == 0 {
		return errors.New("at least one blur level is required")
	}
	for _, s := range c.BlurLevels {
		if s <= 0 {
			return fmt.Errorf("blur level %v must be positive", s)
		}
	}
	if c.NumCrops < 1 {
		return fmt.Errorf("num crops must be at least 1, got %d", c.NumCrops)
	}
	if c.Compositor.Size.MaxSize < 1 && c.Compositor.Size.ExactSize < 1 {
		return errors.New("max size or exact size must be positive")
	}
	if c.Compositor.Size.DivisibleBy < 0 || c.Compositor.Size.ExactSize < 0 {
		return errors.New("divisible by and exact size cannot be negative")
	}
	if c.Compositor.CombineProbability < 0 || c.Compositor.CombineProbability > 1 {
		return errors.New("combine probability must be between 0 and 1")
	}
	if c.WhiteThreshold < 0 || c.WhiteThreshold > 1 {
		return errors.New("white threshold must be between 0 and 1")
	}
	return nil
}

// Option configures a Generator
type Option func(*Generator)

// WithBoxProvider sets where bounding boxes come from. The default is NoBoxes.
func WithBoxProvider(p BoxProvider) Option {
	return func(g *Generator) {
		g.boxes = p
	}
}

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(g *Generator) {
		g.log = l
	}
}

// Generator produces samples from the images of a source
type Generator struct {
	config     Config
	source     ImageSource
	sink       Sink
	boxes      BoxProvider
	compositor *degrade.Compositor
	log        logrus.FieldLogger
}

// New creates a generator. It returns an error when config is invalid.
func New(config Config, source ImageSource, sink Sink, opts ...Option) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator config: %w", err)
	}
	if config.MinRegionSize <= 0 {
		config.MinRegionSize = cropper.DefaultMinRegionSize
	}
	if config.Workers < 1 {
		config.Workers = 1
	}

	g := &Generator{
		config:     config,
		source:     source,
		sink:       sink,
		boxes:      NoBoxes{},
		compositor: degrade.NewWithConfig(config.Compositor),
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate runs one generation pass. A nil seed picks a time-derived seed, which is
// logged and returned in Stats so the run can be replayed. Per-image problems are logged
// and counted; only listing, sink and cancellation errors end the run.
func (g *Generator) Generate(ctx context.Context, seed *uint64) (Stats, error) {
	var stream *rng.Stream
	if seed != nil {
		stream = rng.New(*seed)
	} else {
		stream = rng.NewUnseeded()
		g.log.WithField("seed", stream.Seed()).Info("no seed given, using generated seed")
	}

	t := newTally(stream.Seed())

	items, err := g.source.Items(ctx)
	if err != nil {
		return t.snapshot(), fmt.Errorf("failed to list images: %w", err)
	}

	if g.config.Workers == 1 {
		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return t.snapshot(), err
			}
			if err := g.process(stream, item, t); err != nil {
				return t.snapshot(), err
			}
		}
		return t.snapshot(), nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.config.Workers)
	for i, item := range items {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			return g.process(rng.New(rng.Derive(stream.Seed(), i)), item, t)
		})
	}
	err = eg.Wait()
	return t.snapshot(), err
}

// process samples one image
func (g *Generator) process(r rng.Source, item Item, t *tally) error {
	log := g.log.WithField("file", item.ID)
	t.record(Discovered)

	boxes, annotated, err := g.boxes.Boxes(item.ID)
	if err != nil {
		log.WithError(err).Warn("failed to read bounding boxes, skipping file")
		t.record(Skipped)
		return nil
	}

	img, err := item.Open()
	if err != nil {
		log.WithError(err).Warn("failed to decode image, skipping file")
		t.record(Skipped)
		return nil
	}
	t.record(TypeChecked)
	log.Info("processing file")

	sigma := g.config.BlurLevels[r.IntN(len(g.config.BlurLevels))]
	dst := types.Destination{Index: -1}
	if g.config.SeparateByBlur {
		dst.BlurTag = BlurTag(sigma)
	}

	if !annotated {
		t.record(WholeImageProcessed)
		return g.attempt(r, log, item, img, sigma, dst, false, t)
	}

	t.record(BoundingBoxesExtracted)
	for i, box := range boxes {
		category := types.Category(i)
		boxLog := log.WithFields(logrus.Fields{"category": category.String(), "box": box.String()})
		if !category.Known() {
			boxLog.Warn("bounding box has no category, skipping")
			continue
		}

		region, err := cropper.Region(img, box, g.config.MinRegionSize)
		if err != nil {
			boxLog.WithError(err).Info("cropped image is too small")
			t.record(SizeRejected)
			continue
		}
		t.record(CroppedToRegion)

		boxDst := dst
		boxDst.Category = category.String()
		for n := 0; n < g.config.NumCrops; n++ {
			boxDst.Index = n
			if err := g.attempt(r, boxLog, item, region, sigma, boxDst, category == types.Computer, t); err != nil {
				return err
			}
		}
	}
	return nil
}

// attempt composites one sample from img and saves it unless it is rejected. gated enables
// the quality gate, which applies to machine printed boxes only.
func (g *Generator) attempt(r rng.Source, log logrus.FieldLogger, item Item, img image.Image, sigma float64,
	dst types.Destination, gated bool, t *tally) error {
	res, err := g.compositor.CreateImageAndMask(r, img, sigma)
	if errors.Is(err, cropper.ErrTooSmall) {
		log.WithError(err).Info("image is too small for the configured size")
		t.record(TooSmallSkipped)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to composite %s: %w", item.ID, err)
	}
	t.record(Composited)

	if gated && !quality.Passes(res.Image, g.config.WhiteThreshold) {
		log.WithField("white_fraction", quality.WhiteFraction(res.Image)).Debug("image does not meet quality criteria")
		t.record(QualityRejected)
		return nil
	}

	if err := g.sink.Save(item, dst, res.Sample()); err != nil {
		return fmt.Errorf("failed to save sample of %s: %w", item.ID, err)
	}
	t.record(Accepted)
	log.WithFields(logrus.Fields{
		"sigma": sigma,
		"crop":  fmt.Sprintf("%d+%d,%d", res.Size, res.Origin.X, res.Origin.Y),
	}).Debug("sample accepted")
	return nil
}

// BlurTag formats sigma as an output folder name: 1 -> "1", 0.3 -> "0.3"
func BlurTag(sigma float64) string {
	return strconv.FormatFloat(sigma, 'f', -1, 64)
}
