package tracker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	content := []byte("package main\n\nfunc main() {}\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	tr := New()

	hash, err := tr.Fingerprint(path)
	require.NoError(t, err)
	assert.Len(t, hash, 64) // hex SHA-256

	// File and in-memory digests agree
	assert.Equal(t, tr.FingerprintBytes(content), hash)

	// Same content, same digest
	again, err := tr.Fingerprint(path)
	require.NoError(t, err)
	assert.Equal(t, hash, again)
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))

	tr := New()
	first, err := tr.Fingerprint(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("two"), 0o644))
	second, err := tr.Fingerprint(path)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestFingerprint_MissingFile(t *testing.T) {
	tr := New()
	_, err := tr.Fingerprint(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestShouldReindex(t *testing.T) {
	tr := New()
	stored := map[string]string{
		"a.go": "hash-a",
		"b.go": "hash-b",
	}

	tests := []struct {
		name  string
		path  string
		fresh string
		force bool
		want  bool
	}{
		{"unchanged file", "a.go", "hash-a", false, false},
		{"changed file", "a.go", "hash-a2", false, true},
		{"unknown file", "c.go", "hash-c", false, true},
		{"force overrides unchanged", "a.go", "hash-a", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.ShouldReindex(tt.path, tt.fresh, stored, tt.force)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShouldReindex_EmptyStore(t *testing.T) {
	tr := New()
	assert.True(t, tr.ShouldReindex("a.go", "hash", map[string]string{}, false))
	assert.True(t, tr.ShouldReindex("a.go", "hash", nil, false))
}
