// Package dataset connects the generator to the filesystem: it lists input scans,
// writes ground truth and source pairs and the run manifest, and checks that a written
// dataset is complete.
package dataset

import (
	"context"
	"fmt"
	"image"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"github.com/menta2k/docblur/internal/utils"
	"github.com/menta2k/docblur/pkg/generator"
	"github.com/menta2k/docblur/pkg/processing"
)

// supportedTypes maps accepted input mime types to output extensions
var supportedTypes = []struct {
	mime string
	ext  string
}{
	{"image/jpeg", "jpg"},
	{"image/tiff", "tiff"},
	{"image/bmp", "bmp"},
	{"image/png", "png"},
	{"image/webp", "webp"},
}

// SupportedExtension returns the output extension for a detected mime type
func SupportedExtension(mt *mimetype.MIME) (string, bool) {
	for _, t := range supportedTypes {
		if mt.Is(t.mime) {
			return t.ext, true
		}
	}
	return "", false
}

// SourceOptions controls how the input directory is walked
type SourceOptions struct {
	// Recursive descends into sub-directories
	Recursive bool
	// Flatten names outputs by file stem instead of mirroring the input tree
	Flatten bool
}

// FSSource lists the images of an input directory, sniffing each file's content type
type FSSource struct {
	root      string
	opts      SourceOptions
	processor *processing.Processor
	log       logrus.FieldLogger
}

// NewFSSource creates a source rooted at root
func NewFSSource(root string, opts SourceOptions, processor *processing.Processor, log logrus.FieldLogger) *FSSource {
	if processor == nil {
		processor = processing.NewProcessor()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FSSource{root: root, opts: opts, processor: processor, log: log}
}

// Items returns the supported images under the root in lexical path order. Files of
// other types are skipped.
func (s *FSSource) Items(ctx context.Context) ([]generator.Item, error) {
	files, err := utils.ListFiles(s.root, s.opts.Recursive)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.root, err)
	}

	items := make([]generator.Item, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mt, err := mimetype.DetectFile(path)
		if err != nil {
			s.log.WithError(err).WithField("file", path).Warn("failed to detect file type")
			continue
		}
		ext, ok := SupportedExtension(mt)
		if !ok {
			s.log.WithFields(logrus.Fields{"file": path, "mime": mt.String()}).Debug("unsupported file type, skipping")
			continue
		}

		rel := utils.Stem(path)
		if !s.opts.Flatten {
			if rel, err = utils.RelativeStem(s.root, path); err != nil {
				return nil, err
			}
		}

		items = append(items, generator.Item{
			ID:  path,
			Rel: rel,
			Ext: ext,
			Open: func() (image.Image, error) {
				return s.processor.LoadImage(path)
			},
		})
	}
	return items, nil
}
