package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("CODECTX_PROJECT_ROOT", "")
	t.Setenv("CODECTX_EXTENSIONS", "")
	t.Setenv("CODECTX_MAX_FILE_SIZE", "")

	cfg := FromEnv()

	assert.Empty(t, cfg.ProjectRoot)
	assert.Equal(t, DefaultExtensions, cfg.Extensions)
	assert.Equal(t, DefaultExcludedDirs, cfg.ExcludedDirs)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	assert.Equal(t, DefaultMaxChunkChars, cfg.MaxChunkChars)
	assert.Equal(t, DefaultEmbedBatch, cfg.EmbedBatch)
	assert.Equal(t, DefaultGrepLimit, cfg.GrepLimit)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CODECTX_EXTENSIONS", ".go, .rs")
	t.Setenv("CODECTX_EXCLUDE_DIRS", "out")
	t.Setenv("CODECTX_MAX_FILE_SIZE", "2048")
	t.Setenv("CODECTX_EMBED_BATCH", "8")

	cfg := FromEnv()

	assert.Equal(t, []string{".go", ".rs"}, cfg.Extensions)
	assert.Equal(t, []string{"out"}, cfg.ExcludedDirs)
	assert.Equal(t, int64(2048), cfg.MaxFileSize)
	assert.Equal(t, 8, cfg.EmbedBatch)
}

func TestFromEnv_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("CODECTX_MAX_FILE_SIZE", "not-a-number")
	t.Setenv("CODECTX_EMBED_BATCH", "-3")

	cfg := FromEnv()

	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	assert.Equal(t, DefaultEmbedBatch, cfg.EmbedBatch)
}

func TestWithRoot(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := FromEnv()
	bound, err := cfg.WithRoot(tmpDir)
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(bound.ProjectRoot))
	// The original is untouched
	assert.Empty(t, cfg.ProjectRoot)
}

func TestWithRoot_Errors(t *testing.T) {
	cfg := FromEnv()

	_, err := cfg.WithRoot("")
	assert.Error(t, err)

	_, err = cfg.WithRoot(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = cfg.WithRoot(file)
	assert.Error(t, err)
}

func TestCachePaths(t *testing.T) {
	cfg := &Config{ProjectRoot: filepath.Join("/", "proj")}

	assert.Equal(t, filepath.Join("/", "proj", ".codectx", "index.json"), cfg.CachePath())
	assert.Equal(t, filepath.Join("/", "proj", ".codectx", "snapshots"), cfg.SnapshotDir())
}

func TestIncludesExtension(t *testing.T) {
	cfg := &Config{Extensions: []string{".go", ".md"}}

	assert.True(t, cfg.IncludesExtension("main.go"))
	assert.True(t, cfg.IncludesExtension("README.MD"))
	assert.False(t, cfg.IncludesExtension("photo.png"))
	assert.False(t, cfg.IncludesExtension("Makefile"))
}

func TestExcludesDir(t *testing.T) {
	cfg := &Config{ExcludedDirs: []string{"vendor", "node_modules"}}

	assert.True(t, cfg.ExcludesDir("vendor"))
	assert.False(t, cfg.ExcludesDir("internal"))
}
