package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Nil(t, cfg.Seed)
	assert.Equal(t, 384, cfg.MaxSize)
	assert.Equal(t, 2, cfg.NumCrops)
	assert.Len(t, cfg.BlurLevels, 12)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeFile(t, "docblur.yaml", `
seed: 42
input_path: scans
max_size: 256
blur_levels: [1, 2.5]
separate_by_blur: true
output:
  jpeg_quality: 80
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(42), *cfg.Seed)
	assert.Equal(t, "scans", cfg.InputPath)
	assert.Equal(t, 256, cfg.MaxSize)
	assert.Equal(t, []float64{1, 2.5}, cfg.BlurLevels)
	assert.True(t, cfg.SeparateByBlur)
	assert.Equal(t, 80, cfg.Output.JPEGQuality)
	assert.True(t, cfg.Output.WebPLossless)
	assert.Equal(t, 2, cfg.NumCrops)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("DOCBLUR_SEED", "7")
	t.Setenv("DOCBLUR_MAX_SIZE", "128")
	t.Setenv("DOCBLUR_OUTPUT_JPEG_QUALITY", "70")
	path := writeFile(t, "docblur.yaml", "max_size: 256\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(7), *cfg.Seed)
	assert.Equal(t, 128, cfg.MaxSize)
	assert.Equal(t, 70, cfg.Output.JPEGQuality)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeFile(t, "docblur.yaml", "blur_levels: [1, -2]\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := writeFile(t, "docblur.yaml", "max_size: [\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "docblur.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{name: "empty input", modify: func(c *Config) { c.InputPath = "" }},
		{name: "empty output", modify: func(c *Config) { c.OutputPath = "" }},
		{name: "no blur levels", modify: func(c *Config) { c.BlurLevels = nil }},
		{name: "zero blur level", modify: func(c *Config) { c.BlurLevels = []float64{0} }},
		{name: "max size", modify: func(c *Config) { c.MaxSize = 0 }},
		{name: "num crops", modify: func(c *Config) { c.NumCrops = 0 }},
		{name: "negative size", modify: func(c *Config) { c.Size = -1 }},
		{name: "white threshold", modify: func(c *Config) { c.WhiteThreshold = 1.2 }},
		{name: "combine probability", modify: func(c *Config) { c.CombineProbability = -0.5 }},
		{name: "feather radius", modify: func(c *Config) { c.FeatherRadius = -1 }},
		{name: "workers", modify: func(c *Config) { c.Workers = 0 }},
		{name: "jpeg quality", modify: func(c *Config) { c.Output.JPEGQuality = 101 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
