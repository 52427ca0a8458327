package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/docblur/internal/config"
)

func TestApplyFlags(t *testing.T) {
	require.NoError(t, generateCmd.ParseFlags([]string{
		"--seed=5",
		"--blur-levels=1,2.5",
		"--max-size=128",
		"--input=scans",
		"--manifest=false",
	}))

	v, err := config.New("")
	require.NoError(t, err)
	require.NoError(t, applyFlags(generateCmd.Flags(), v))

	cfg, err := config.Parse(v)
	require.NoError(t, err)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(5), *cfg.Seed)
	assert.Equal(t, []float64{1, 2.5}, cfg.BlurLevels)
	assert.Equal(t, 128, cfg.MaxSize)
	assert.Equal(t, "scans", cfg.InputPath)
	assert.False(t, cfg.Manifest)
	assert.Equal(t, 2, cfg.NumCrops)
}

func TestOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Size = 64
	cfg.DivisibleBy = 8
	cfg.Workers = 3
	cfg.FlattenOutput = true

	opts := options(cfg, nil)
	assert.Equal(t, 64, opts.Generator.Compositor.Size.ExactSize)
	assert.Equal(t, 8, opts.Generator.Compositor.Size.DivisibleBy)
	assert.Equal(t, 384, opts.Generator.Compositor.Size.MaxSize)
	assert.Equal(t, 3, opts.Generator.Workers)
	assert.True(t, opts.Source.Flatten)
	assert.Equal(t, 95, opts.Output.JPEGQuality)
	assert.NoError(t, opts.Generator.Validate())
}

func TestSetupLogging(t *testing.T) {
	assert.NoError(t, setupLogging("debug", "json"))
	assert.NoError(t, setupLogging("info", "text"))
	assert.Error(t, setupLogging("loud", "text"))
	assert.Error(t, setupLogging("info", "xml"))
}
