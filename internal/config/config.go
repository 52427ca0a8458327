package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/menta2k/docblur/internal/utils"
)

// EnvPrefix prefixes environment overrides, e.g. DOCBLUR_MAX_SIZE
const EnvPrefix = "DOCBLUR"

// Config holds the application configuration
type Config struct {
	// Seed is the master random seed; nil picks one per run
	Seed *uint64 `mapstructure:"seed" yaml:"seed,omitempty"`

	InputPath     string `mapstructure:"input_path" yaml:"input_path"`
	OutputPath    string `mapstructure:"output_path" yaml:"output_path"`
	Recursive     bool   `mapstructure:"recursive" yaml:"recursive"`
	FlattenOutput bool   `mapstructure:"flatten_output" yaml:"flatten_output"`

	MaxSize            int       `mapstructure:"max_size" yaml:"max_size"`
	BlurLevels         []float64 `mapstructure:"blur_levels" yaml:"blur_levels"`
	NumCrops           int       `mapstructure:"num_crops" yaml:"num_crops"`
	SeparateByBlur     bool      `mapstructure:"separate_by_blur" yaml:"separate_by_blur"`
	DivisibleBy        int       `mapstructure:"divisible_by" yaml:"divisible_by"`
	Size               int       `mapstructure:"size" yaml:"size"`
	WhiteThreshold     float64   `mapstructure:"white_threshold" yaml:"white_threshold"`
	MinRegionSize      int       `mapstructure:"min_region_size" yaml:"min_region_size"`
	CombineProbability float64   `mapstructure:"combine_probability" yaml:"combine_probability"`
	FeatherRadius      float64   `mapstructure:"feather_radius" yaml:"feather_radius"`
	Workers            int       `mapstructure:"workers" yaml:"workers"`

	Output   OutputConfig `mapstructure:"output" yaml:"output"`
	Manifest bool         `mapstructure:"manifest" yaml:"manifest"`
}

// OutputConfig holds encoder settings for written samples
type OutputConfig struct {
	JPEGQuality  int  `mapstructure:"jpeg_quality" yaml:"jpeg_quality"`
	WebPLossless bool `mapstructure:"webp_lossless" yaml:"webp_lossless"`
	WebPQuality  int  `mapstructure:"webp_quality" yaml:"webp_quality"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		InputPath:          filepath.Join("data", "in"),
		OutputPath:         filepath.Join("data", "out"),
		MaxSize:            384,
		BlurLevels:         []float64{0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1, 1.5, 2, 3, 5},
		NumCrops:           2,
		WhiteThreshold:     0.90,
		MinRegionSize:      16,
		CombineProbability: 0.1,
		FeatherRadius:      2,
		Workers:            1,
		Output: OutputConfig{
			JPEGQuality:  95,
			WebPLossless: true,
			WebPQuality:  90,
		},
		Manifest: true,
	}
}

// New creates a viper instance carrying the defaults, DOCBLUR_ environment overrides and,
// when found, the config file. Without cfgFile it looks for docblur.yaml in the working
// directory and in $HOME/.docblur. A missing config file is not an error.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()

	d := Default()
	v.SetDefault("input_path", d.InputPath)
	v.SetDefault("output_path", d.OutputPath)
	v.SetDefault("recursive", d.Recursive)
	v.SetDefault("flatten_output", d.FlattenOutput)
	v.SetDefault("max_size", d.MaxSize)
	v.SetDefault("blur_levels", d.BlurLevels)
	v.SetDefault("num_crops", d.NumCrops)
	v.SetDefault("separate_by_blur", d.SeparateByBlur)
	v.SetDefault("divisible_by", d.DivisibleBy)
	v.SetDefault("size", d.Size)
	v.SetDefault("white_threshold", d.WhiteThreshold)
	v.SetDefault("min_region_size", d.MinRegionSize)
	v.SetDefault("combine_probability", d.CombineProbability)
	v.SetDefault("feather_radius", d.FeatherRadius)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("output.jpeg_quality", d.Output.JPEGQuality)
	v.SetDefault("output.webp_lossless", d.Output.WebPLossless)
	v.SetDefault("output.webp_quality", d.Output.WebPQuality)
	v.SetDefault("manifest", d.Manifest)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// seed has no default, so it is only seen in the environment when bound
	if err := v.BindEnv("seed"); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("docblur")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.docblur")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return v, nil
}

// Parse decodes and validates the configuration held by v
func Parse(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads the configuration from defaults, environment and cfgFile
func Load(cfgFile string) (*Config, error) {
	v, err := New(cfgFile)
	if err != nil {
		return nil, err
	}
	return Parse(v)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("input_path cannot be empty")
	}

	if c.OutputPath == "" {
		return fmt.Errorf("output_path cannot be empty")
	}

	if len(c.BlurLevels) == 0 {
		return fmt.Errorf("blur_levels cannot be empty")
	}
	for _, s := range c.BlurLevels {
		if s <= 0 {
			return fmt.Errorf("blur_levels must be positive, got %v", s)
		}
	}

	if c.MaxSize < 1 {
		return fmt.Errorf("max_size must be positive")
	}

	if c.NumCrops < 1 {
		return fmt.Errorf("num_crops must be positive")
	}

	if c.DivisibleBy < 0 || c.Size < 0 {
		return fmt.Errorf("divisible_by and size cannot be negative")
	}

	if c.WhiteThreshold < 0 || c.WhiteThreshold > 1 {
		return fmt.Errorf("white_threshold must be between 0 and 1")
	}

	if c.CombineProbability < 0 || c.CombineProbability > 1 {
		return fmt.Errorf("combine_probability must be between 0 and 1")
	}

	if c.FeatherRadius < 0 {
		return fmt.Errorf("feather_radius cannot be negative")
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}

	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output.jpeg_quality must be between 1 and 100")
	}

	if c.Output.WebPQuality < 0 || c.Output.WebPQuality > 100 {
		return fmt.Errorf("output.webp_quality must be between 0 and 100")
	}

	return nil
}

// Marshal encodes cfg as YAML
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// WriteDefault writes the default configuration as YAML to path
func WriteDefault(path string) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := Marshal(Default())
	if err != nil {
		return err
	}

	header := []byte(`# docblur configuration
# Every key can be overridden with a DOCBLUR_ environment variable, e.g. DOCBLUR_MAX_SIZE=256.
# Set seed to make runs reproducible.

`)
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GetConfigPath returns the per-user configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "docblur.yaml"
	}
	return filepath.Join(home, ".docblur", "docblur.yaml")
}
