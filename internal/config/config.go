package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Defaults for tunables not set in the environment
const (
	DefaultMaxFileSize   = 1 << 20 // 1 MiB
	DefaultMaxChunkChars = 1500
	DefaultEmbedBatch    = 16
	DefaultGrepLimit     = 200

	// CacheFileName is the project-relative location of the persisted index
	CacheFileName = ".codectx/index.json"

	// SnapshotDirName is the project-relative root of the snapshot store
	SnapshotDirName = ".codectx/snapshots"
)

// DefaultExtensions lists the file extensions indexed when the environment
// does not override them.
var DefaultExtensions = []string{
	".go", ".py", ".js", ".ts", ".md", ".markdown",
	".html", ".htm", ".txt", ".json", ".yaml", ".yml",
}

// DefaultExcludedDirs lists directory names skipped during discovery
var DefaultExcludedDirs = []string{
	"node_modules", "vendor", "dist", "build", "target", "__pycache__",
}

// Config holds the project configuration consumed by the pipeline and the
// query paths.
type Config struct {
	ProjectRoot   string
	Extensions    []string
	ExcludedDirs  []string
	MaxFileSize   int64
	MaxChunkChars int
	EmbedBatch    int
	GrepLimit     int
}

// FromEnv builds a Config from CODECTX_* environment variables. The project
// root may be empty here; it is set later via the set_project tool or a CLI
// flag.
func FromEnv() *Config {
	cfg := &Config{
		ProjectRoot:   os.Getenv("CODECTX_PROJECT_ROOT"),
		Extensions:    splitList(os.Getenv("CODECTX_EXTENSIONS"), DefaultExtensions),
		ExcludedDirs:  splitList(os.Getenv("CODECTX_EXCLUDE_DIRS"), DefaultExcludedDirs),
		MaxFileSize:   envInt64("CODECTX_MAX_FILE_SIZE", DefaultMaxFileSize),
		MaxChunkChars: envInt("CODECTX_MAX_CHUNK_CHARS", DefaultMaxChunkChars),
		EmbedBatch:    envInt("CODECTX_EMBED_BATCH", DefaultEmbedBatch),
		GrepLimit:     envInt("CODECTX_GREP_LIMIT", DefaultGrepLimit),
	}
	return cfg
}

// WithRoot returns a copy of the config bound to an absolute project root
func (c *Config) WithRoot(root string) (*Config, error) {
	if root == "" {
		return nil, fmt.Errorf("project root cannot be empty")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("project root not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root is not a directory: %s", abs)
	}

	clone := *c
	clone.ProjectRoot = abs
	return &clone, nil
}

// CachePath returns the absolute path of the persisted index file
func (c *Config) CachePath() string {
	return filepath.Join(c.ProjectRoot, filepath.FromSlash(CacheFileName))
}

// SnapshotDir returns the absolute path of the snapshot store root
func (c *Config) SnapshotDir() string {
	return filepath.Join(c.ProjectRoot, filepath.FromSlash(SnapshotDirName))
}

// IncludesExtension reports whether the given path's extension is indexed
func (c *Config) IncludesExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range c.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ExcludesDir reports whether a directory name is excluded from discovery
func (c *Config) ExcludesDir(name string) bool {
	for _, d := range c.ExcludedDirs {
		if name == d {
			return true
		}
	}
	return false
}

func splitList(raw string, def []string) []string {
	if raw == "" {
		return append([]string(nil), def...)
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), def...)
	}
	return out
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envInt64(key string, def int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
