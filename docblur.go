// Package docblur generates synthetic training data for document deblurring.
//
// For every input scan it cuts square crops, blurs each crop with a Gaussian of a
// randomly chosen sigma and blends the sharp and blurred versions through a random
// spatial mask. The mask is written as ground truth next to the partially blurred
// composite, so a model can learn which regions of a page are out of focus.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		"github.com/menta2k/docblur"
//	)
//
//	func main() {
//		db := docblur.New()
//
//		seed := uint64(42)
//		res, err := db.Generate(context.Background(), "data/in", "data/out", &seed)
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("wrote %d samples (run %s)", res.Stats.Accepted, res.RunID)
//	}
//
// The package consists of these main components:
//
// 1. Mask (pkg/mask): band and ellipse masks and the random shape families
// 2. Degrade (pkg/degrade): per-channel Gaussian blur, feathering and compositing
// 3. Quality (pkg/quality): rejects near-blank crops of machine printed text
// 4. Generator (pkg/generator): the seeded sampling loop over images and bounding boxes
// 5. Dataset (pkg/dataset) and CVL (pkg/cvl): filesystem input, output and annotations
//
// Runs are reproducible: with the same seed, inputs and traversal order the written
// dataset is byte-identical.
package docblur

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/menta2k/docblur/pkg/cvl"
	"github.com/menta2k/docblur/pkg/dataset"
	"github.com/menta2k/docblur/pkg/degrade"
	"github.com/menta2k/docblur/pkg/generator"
	"github.com/menta2k/docblur/pkg/processing"
	"github.com/menta2k/docblur/pkg/rng"
)

// Version of the docblur library
const Version = "1.0.0"

// Options configures a DocBlur
type Options struct {
	Generator generator.Config
	Source    dataset.SourceOptions
	Output    processing.Options
	// Manifest writes manifest.jsonl into the output directory
	Manifest bool
	// Annotations reads CVL attribute files for bounding boxes
	Annotations bool
	Logger      logrus.FieldLogger
}

// DefaultOptions returns the options used by New
func DefaultOptions() Options {
	return Options{
		Generator:   generator.DefaultConfig(),
		Output:      processing.DefaultOptions(),
		Manifest:    true,
		Annotations: true,
		Logger:      logrus.StandardLogger(),
	}
}

// DocBlur provides a high-level interface for dataset generation
type DocBlur struct {
	opts       Options
	processor  *processing.Processor
	compositor *degrade.Compositor
}

// New creates a new DocBlur with default options
func New() *DocBlur {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates a new DocBlur with custom options
func NewWithOptions(opts Options) *DocBlur {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &DocBlur{
		opts:       opts,
		processor:  processing.NewProcessorWithOptions(opts.Output),
		compositor: degrade.NewWithConfig(opts.Generator.Compositor),
	}
}

// Result summarizes a Generate call
type Result struct {
	Stats generator.Stats
	// RunID is the manifest run ID, empty without a manifest
	RunID string
	Files int
	Bytes int64
}

// LoadImage loads an image from file
func (d *DocBlur) LoadImage(path string) (image.Image, error) {
	return d.processor.LoadImage(path)
}

// SaveImage saves an image to file
func (d *DocBlur) SaveImage(img image.Image, path string) error {
	return d.processor.SaveImage(img, path)
}

// CreateImageAndMask composites a single sample from img with the given sigma
func (d *DocBlur) CreateImageAndMask(img image.Image, sigma float64, seed uint64) (degrade.Result, error) {
	return d.compositor.CreateImageAndMask(rng.New(seed), img, sigma)
}

// Generate writes a dataset for the images in inputDir to outputDir. A nil seed picks a
// time-derived one, reported in Result.Stats.Seed.
func (d *DocBlur) Generate(ctx context.Context, inputDir, outputDir string, seed *uint64) (Result, error) {
	var manifest *dataset.Manifest
	if d.opts.Manifest {
		m, err := dataset.CreateManifest(filepath.Join(outputDir, dataset.ManifestName))
		if err != nil {
			return Result{}, err
		}
		defer m.Close()
		manifest = m
	}

	source := dataset.NewFSSource(inputDir, d.opts.Source, d.processor, d.opts.Logger)
	sink := dataset.NewFSSink(outputDir, d.processor, manifest)

	genOpts := []generator.Option{generator.WithLogger(d.opts.Logger)}
	if d.opts.Annotations {
		genOpts = append(genOpts, generator.WithBoxProvider(cvl.NewProvider()))
	}
	gen, err := generator.New(d.opts.Generator, source, sink, genOpts...)
	if err != nil {
		return Result{}, err
	}

	stats, err := gen.Generate(ctx, seed)
	res := Result{Stats: stats}
	if manifest != nil {
		res.RunID = manifest.RunID()
	}
	res.Files, res.Bytes = sink.Written()
	if err != nil {
		return res, fmt.Errorf("generation failed: %w", err)
	}
	return res, nil
}

// Verify checks that every ground truth file of the dataset at root has a source
// counterpart and vice versa
func Verify(root string) (dataset.Report, error) {
	return dataset.Verify(root)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
