package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codectx/codectx/pkg/types"
)

func populatedIndex(t *testing.T, root, sig string) *Index {
	t.Helper()
	ix := New(root, sig)
	require.NoError(t, ix.Upsert(
		[]types.Chunk{chunkFor("a", "a.go", 1), chunkFor("b", "b.go", 1)},
		[][]float32{{1, 0, 0}, {0, 1, 0}},
	))
	ix.SetFingerprint("a.go", "hash-a")
	ix.SetFingerprint("b.go", "hash-b")
	return ix
}

func TestPersistLoad_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "index.json")

	orig := populatedIndex(t, "/proj", "local/test@3")
	require.NoError(t, orig.Persist(path))
	assert.False(t, orig.PersistedAt().IsZero())

	restored := New("/proj", "local/test@3")
	require.NoError(t, restored.Load(path))

	assert.True(t, restored.Ready())
	assert.Equal(t, orig.EntryCount(), restored.EntryCount())
	assert.Equal(t, orig.Dimension(), restored.Dimension())
	assert.Equal(t, orig.Fingerprints(), restored.Fingerprints())

	// Restored entries search identically
	results := restored.Search([]float32{1, 0, 0}, 1, nil)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Chunk.Name)
}

func TestLoad_MissingFile(t *testing.T) {
	ix := New("/proj", "local/test@3")
	err := ix.Load(filepath.Join(t.TempDir(), "nope.json"))

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrCacheInvalid)
	assert.False(t, ix.Ready())
}

func TestLoad_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	ix := New("/proj", "local/test@3")
	err := ix.Load(path)
	assert.ErrorIs(t, err, types.ErrCacheInvalid)
}

func TestLoad_RootMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, populatedIndex(t, "/proj", "local/test@3").Persist(path))

	other := New("/elsewhere", "local/test@3")
	err := other.Load(path)

	assert.ErrorIs(t, err, types.ErrCacheInvalid)
	assert.Equal(t, 0, other.EntryCount())
}

func TestLoad_ProviderMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, populatedIndex(t, "/proj", "jina/jina-embeddings-v3@1024").Persist(path))

	other := New("/proj", "local/local-embeddings@384")
	err := other.Load(path)

	assert.ErrorIs(t, err, types.ErrCacheInvalid)
	assert.False(t, other.Ready())
}

func TestLoad_VersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	doc := `{"version":99,"project_root":"/proj","provider":"local/test@3","dimension":0,"fingerprints":{},"entries":[]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	ix := New("/proj", "local/test@3")
	err := ix.Load(path)
	assert.ErrorIs(t, err, types.ErrCacheInvalid)
}

func TestLoad_EntryDimensionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	doc := `{"version":1,"project_root":"/proj","provider":"local/test@3","dimension":3,` +
		`"fingerprints":{},"entries":[{"chunk":{"ID":"x","FilePath":"a.go","StartLine":1,"EndLine":1},"vector":[1,0]}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	ix := New("/proj", "local/test@3")
	err := ix.Load(path)
	assert.ErrorIs(t, err, types.ErrCacheInvalid)
}

func TestPersist_AtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")

	first := populatedIndex(t, "/proj", "local/test@3")
	require.NoError(t, first.Persist(path))

	// Persist again over the existing file
	require.NoError(t, first.Persist(path))

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "index.json", entries[0].Name())
}

func TestPersist_EmptyIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")

	empty := New("/proj", "local/test@3")
	empty.MarkReady()
	require.NoError(t, empty.Persist(path))

	restored := New("/proj", "local/test@3")
	require.NoError(t, restored.Load(path))
	assert.True(t, restored.Ready())
	assert.Equal(t, 0, restored.EntryCount())
}
