package dataset

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/menta2k/docblur/pkg/generator"
	"github.com/menta2k/docblur/pkg/processing"
	"github.com/menta2k/docblur/pkg/types"
)

// Output sub-directories
const (
	GroundTruthDir = "gt"
	SourceDir      = "source"
)

// FSSink writes samples below a root directory:
//
//	<root>/gt/<category>/<blur>/<rel>_<index>.<ext>
//	<root>/source/<category>/<blur>/<rel>_<index>.<ext>
//
// Empty category and blur folders are omitted, and whole-image samples carry no index.
type FSSink struct {
	root      string
	processor *processing.Processor
	manifest  *Manifest

	mu    sync.Mutex
	files int
	bytes int64
}

// NewFSSink creates a sink rooted at root. manifest may be nil.
func NewFSSink(root string, processor *processing.Processor, manifest *Manifest) *FSSink {
	if processor == nil {
		processor = processing.NewProcessor()
	}
	return &FSSink{root: root, processor: processor, manifest: manifest}
}

// RelativePath returns the slash separated path of a sample below the root
func RelativePath(kind string, item generator.Item, dst types.Destination) string {
	name := item.Rel
	if dst.Indexed() {
		name = fmt.Sprintf("%s_%d", name, dst.Index)
	}
	return path.Join(kind, dst.Category, dst.BlurTag, name+"."+item.Ext)
}

// Path returns where a sample of the given kind is written
func (s *FSSink) Path(kind string, item generator.Item, dst types.Destination) string {
	return filepath.Join(s.root, filepath.FromSlash(RelativePath(kind, item, dst)))
}

// Save writes the mask as ground truth and the composite as source
func (s *FSSink) Save(item generator.Item, dst types.Destination, sample types.Sample) error {
	gtPath := s.Path(GroundTruthDir, item, dst)
	sourcePath := s.Path(SourceDir, item, dst)

	if err := s.processor.SaveImage(sample.Source, sourcePath); err != nil {
		return fmt.Errorf("failed to save %s: %w", sourcePath, err)
	}
	if err := s.processor.SaveImage(sample.Mask, gtPath); err != nil {
		return fmt.Errorf("failed to save %s: %w", gtPath, err)
	}
	s.count(gtPath, sourcePath)

	if s.manifest == nil {
		return nil
	}
	return s.manifest.Append(Record{
		Input:       item.ID,
		GroundTruth: RelativePath(GroundTruthDir, item, dst),
		Source:      RelativePath(SourceDir, item, dst),
		Category:    dst.Category,
		Index:       dst.Index,
		Sigma:       sample.Sigma,
		Shapes:      sample.Shapes,
		Origin:      [2]int{sample.Origin.X, sample.Origin.Y},
		Size:        sample.Size,
	})
}

func (s *FSSink) count(paths ...string) {
	var n int64
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			n += info.Size()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files += len(paths)
	s.bytes += n
}

// Written returns the number of files and bytes written so far
func (s *FSSink) Written() (files int, bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files, s.bytes
}
