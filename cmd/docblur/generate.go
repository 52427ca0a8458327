package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/menta2k/docblur"
	"github.com/menta2k/docblur/internal/config"
	"github.com/menta2k/docblur/internal/utils"
	"github.com/menta2k/docblur/pkg/cropper"
	"github.com/menta2k/docblur/pkg/dataset"
	"github.com/menta2k/docblur/pkg/degrade"
	"github.com/menta2k/docblur/pkg/generator"
	"github.com/menta2k/docblur/pkg/processing"
)

// generateFlags maps flag names to config keys
var generateFlags = map[string]string{
	"input":         "input_path",
	"output":        "output_path",
	"seed":          "seed",
	"recursive":     "recursive",
	"flatten":       "flatten_output",
	"max-size":      "max_size",
	"blur-levels":   "blur_levels",
	"num-crops":     "num_crops",
	"separate-blur": "separate_by_blur",
	"divisible-by":  "divisible_by",
	"size":          "size",
	"workers":       "workers",
	"manifest":      "manifest",
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate ground truth and source pairs from input scans",
	Long: `Generate walks the input directory and writes, for every supported image
(jpg, tiff, bmp, png, webp), mask/composite pairs below the output directory.

Scans with a CVL attribute file (xml/<name>_attributes.xml next to the scan) are
sampled per text region: the first region is machine printed text, the second is
handwriting. Other scans are sampled once as a whole.

Flags override DOCBLUR_ environment variables, which override the config file.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringP("input", "i", "", "input directory (default data/in)")
	f.StringP("output", "o", "", "output directory (default data/out)")
	f.Uint64("seed", 0, "random seed (default: time-derived, logged)")
	f.BoolP("recursive", "r", false, "descend into sub-directories of the input")
	f.Bool("flatten", false, "name outputs by file stem instead of mirroring the input tree")
	f.Int("max-size", 0, "maximum crop size (default 384)")
	f.Float64Slice("blur-levels", nil, "candidate Gaussian sigmas")
	f.Int("num-crops", 0, "crops per bounding box (default 2)")
	f.Bool("separate-blur", false, "write samples into per-sigma sub-folders")
	f.Int("divisible-by", 0, "floor the crop size to a multiple of this value")
	f.Int("size", 0, "exact crop size; larger than the image skips it")
	f.IntP("workers", "w", 0, "images processed in parallel (default 1)")
	f.Bool("manifest", true, "write manifest.jsonl")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	v, err := config.New(cfgFile)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd.Flags(), v); err != nil {
		return err
	}
	cfg, err := config.Parse(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !utils.DirExists(cfg.InputPath) {
		return fmt.Errorf("input directory %s does not exist", cfg.InputPath)
	}

	log := logrus.StandardLogger()
	if used := v.ConfigFileUsed(); used != "" {
		log.WithField("config", used).Debug("loaded config file")
	}
	log.WithFields(logrus.Fields{
		"input":       cfg.InputPath,
		"output":      cfg.OutputPath,
		"max_size":    cfg.MaxSize,
		"blur_levels": cfg.BlurLevels,
		"workers":     cfg.Workers,
	}).Info("generating dataset")

	db := docblur.NewWithOptions(options(cfg, log))
	res, err := db.Generate(cmd.Context(), cfg.InputPath, cfg.OutputPath, cfg.Seed)

	fields := logrus.Fields{
		"seed":             res.Stats.Seed,
		"images":           res.Stats.Images,
		"accepted":         res.Stats.Accepted,
		"skipped":          res.Stats.Skipped,
		"size_rejected":    res.Stats.SizeRejected,
		"too_small":        res.Stats.TooSmallSkipped,
		"quality_rejected": res.Stats.QualityRejected,
		"written":          utils.FormatFileSize(res.Bytes),
	}
	if res.RunID != "" {
		fields["run_id"] = res.RunID
	}
	if err != nil {
		log.WithFields(fields).WithError(err).Error("generation stopped")
		return err
	}
	log.WithFields(fields).Info("generation finished")
	return nil
}

// applyFlags copies explicitly set flags into v
func applyFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	for name, key := range generateFlags {
		if !flags.Changed(name) {
			continue
		}

		var (
			value any
			err   error
		)
		switch flags.Lookup(name).Value.Type() {
		case "string":
			value, err = flags.GetString(name)
		case "bool":
			value, err = flags.GetBool(name)
		case "int":
			value, err = flags.GetInt(name)
		case "uint64":
			value, err = flags.GetUint64(name)
		case "float64Slice":
			value, err = flags.GetFloat64Slice(name)
		default:
			err = fmt.Errorf("unsupported flag type for --%s", name)
		}
		if err != nil {
			return err
		}
		v.Set(key, value)
	}
	return nil
}

// options translates the configuration into library options
func options(cfg *config.Config, log logrus.FieldLogger) docblur.Options {
	return docblur.Options{
		Generator: generator.Config{
			BlurLevels: cfg.BlurLevels,
			NumCrops:   cfg.NumCrops,
			Compositor: degrade.Config{
				Size: cropper.SizeOptions{
					MaxSize:     cfg.MaxSize,
					DivisibleBy: cfg.DivisibleBy,
					ExactSize:   cfg.Size,
				},
				CombineProbability: cfg.CombineProbability,
				FeatherRadius:      cfg.FeatherRadius,
			},
			WhiteThreshold: cfg.WhiteThreshold,
			MinRegionSize:  cfg.MinRegionSize,
			SeparateByBlur: cfg.SeparateByBlur,
			Workers:        cfg.Workers,
		},
		Source: dataset.SourceOptions{
			Recursive: cfg.Recursive,
			Flatten:   cfg.FlattenOutput,
		},
		Output: processing.Options{
			JPEGQuality:  cfg.Output.JPEGQuality,
			WebPLossless: cfg.Output.WebPLossless,
			WebPQuality:  cfg.Output.WebPQuality,
		},
		Manifest:    cfg.Manifest,
		Annotations: true,
		Logger:      log,
	}
}
