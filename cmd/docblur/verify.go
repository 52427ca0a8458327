package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/menta2k/docblur"
	"github.com/menta2k/docblur/internal/config"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [dataset-dir...]",
	Short: "Check that every ground truth file has a source file and vice versa",
	Long: `Verify compares the gt/ and source/ trees of one or more dataset directories
and lists the files present on one side only. Without arguments the configured
output directory is checked.`,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	roots := args
	if len(roots) == 0 {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		roots = []string{cfg.OutputPath}
	}

	incomplete := 0
	for _, root := range roots {
		report, err := docblur.Verify(root)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d pairs\n", root, report.Pairs)
		for _, rel := range report.GroundTruthOnly {
			fmt.Fprintf(out, "  gt only:     %s\n", rel)
		}
		for _, rel := range report.SourceOnly {
			fmt.Fprintf(out, "  source only: %s\n", rel)
		}
		if !report.Complete() {
			incomplete++
			logrus.WithFields(logrus.Fields{
				"dataset":     root,
				"gt_only":     len(report.GroundTruthOnly),
				"source_only": len(report.SourceOnly),
			}).Warn("dataset has unmatched files")
		}
	}

	if incomplete > 0 {
		return fmt.Errorf("%d of %d datasets have unmatched files", incomplete, len(roots))
	}
	return nil
}
