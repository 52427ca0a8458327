package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestGetFileExtension(t *testing.T) {
	assert.Equal(t, "jpg", GetFileExtension("a/b/scan.JPG"))
	assert.Equal(t, "tiff", GetFileExtension("scan.tiff"))
	assert.Equal(t, "", GetFileExtension("README"))
}

func TestStem(t *testing.T) {
	assert.Equal(t, "0001-1", Stem(filepath.Join("in", "0001-1.tif")))
	assert.Equal(t, "archive.tar", Stem("archive.tar.gz"))
}

func TestRelativeStem(t *testing.T) {
	rel, err := RelativeStem("in", filepath.Join("in", "a", "b.tif"))
	require.NoError(t, err)
	assert.Equal(t, "a/b", rel)
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.png"))
	touch(t, filepath.Join(dir, "a.png"))
	touch(t, filepath.Join(dir, "sub", "c.png"))

	flat, err := ListFiles(dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")}, flat)

	all, err := ListFiles(dir, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "sub", "c.png"),
	}, all)
}

func TestListFilesMissingDir(t *testing.T) {
	_, err := ListFiles(filepath.Join(t.TempDir(), "missing"), true)
	assert.Error(t, err)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	touch(t, file)

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir))
	assert.True(t, DirExists(dir))
	assert.False(t, DirExists(file))
	assert.False(t, FileExists(filepath.Join(dir, "nope")))
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	assert.True(t, DirExists(dir))
	require.NoError(t, EnsureDir(dir))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "2.0 MB", FormatFileSize(2*1024*1024))
}
