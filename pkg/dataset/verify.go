package dataset

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/menta2k/docblur/internal/utils"
)

// Report is the result of comparing the gt and source trees of a dataset
type Report struct {
	Root  string
	Pairs int
	// GroundTruthOnly lists files under gt/ without a source counterpart
	GroundTruthOnly []string
	// SourceOnly lists files under source/ without a ground truth counterpart
	SourceOnly []string
}

// Complete reports whether every file has a counterpart
func (r Report) Complete() bool {
	return len(r.GroundTruthOnly) == 0 && len(r.SourceOnly) == 0
}

// Verify pairs the files below root/gt and root/source by relative path
func Verify(root string) (Report, error) {
	gt, err := relativeFiles(filepath.Join(root, GroundTruthDir))
	if err != nil {
		return Report{}, err
	}
	source, err := relativeFiles(filepath.Join(root, SourceDir))
	if err != nil {
		return Report{}, err
	}

	report := Report{Root: root}
	for rel := range gt {
		if _, ok := source[rel]; ok {
			report.Pairs++
		} else {
			report.GroundTruthOnly = append(report.GroundTruthOnly, rel)
		}
	}
	for rel := range source {
		if _, ok := gt[rel]; !ok {
			report.SourceOnly = append(report.SourceOnly, rel)
		}
	}
	sort.Strings(report.GroundTruthOnly)
	sort.Strings(report.SourceOnly)
	return report, nil
}

func relativeFiles(dir string) (map[string]struct{}, error) {
	if !utils.DirExists(dir) {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	files, err := utils.ListFiles(dir, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	out := make(map[string]struct{}, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(dir, f)
		if err != nil {
			return nil, err
		}
		out[filepath.ToSlash(rel)] = struct{}{}
	}
	return out, nil
}
