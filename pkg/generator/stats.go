package generator

import (
	"fmt"
	"sync"
)

// State is a step an image or sample passes through while it is processed
type State int

// Processing states. Skipped, SizeRejected, TooSmallSkipped, QualityRejected and
// Accepted are terminal.
const (
	Discovered State = iota
	TypeChecked
	Skipped
	BoundingBoxesExtracted
	WholeImageProcessed
	CroppedToRegion
	SizeRejected
	Composited
	TooSmallSkipped
	QualityRejected
	Accepted
)

func (s State) String() string {
	switch s {
	case Discovered:
		return "discovered"
	case TypeChecked:
		return "type_checked"
	case Skipped:
		return "skipped"
	case BoundingBoxesExtracted:
		return "bounding_boxes_extracted"
	case WholeImageProcessed:
		return "whole_image_processed"
	case CroppedToRegion:
		return "cropped_to_region"
	case SizeRejected:
		return "size_rejected"
	case Composited:
		return "composited"
	case TooSmallSkipped:
		return "too_small_skipped"
	case QualityRejected:
		return "quality_rejected"
	case Accepted:
		return "accepted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Stats summarizes a run
type Stats struct {
	// Seed is the seed the run was drawn from
	Seed uint64 `json:"seed"`
	// Images counts discovered images
	Images int `json:"images"`
	// Skipped counts images that could not be read or decoded
	Skipped int `json:"skipped"`
	// SizeRejected counts bounding boxes below the minimum region size
	SizeRejected int `json:"size_rejected"`
	// TooSmallSkipped counts attempts where the crop size did not fit
	TooSmallSkipped int `json:"too_small_skipped"`
	QualityRejected int `json:"quality_rejected"`
	Accepted        int `json:"accepted"`
}

// tally counts states; it is shared by the workers of a run
type tally struct {
	mu    sync.Mutex
	stats Stats
}

func newTally(seed uint64) *tally {
	return &tally{stats: Stats{Seed: seed}}
}

func (t *tally) record(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch s {
	case Discovered:
		t.stats.Images++
	case Skipped:
		t.stats.Skipped++
	case SizeRejected:
		t.stats.SizeRejected++
	case TooSmallSkipped:
		t.stats.TooSmallSkipped++
	case QualityRejected:
		t.stats.QualityRejected++
	case Accepted:
		t.stats.Accepted++
	}
}

func (t *tally) snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}
