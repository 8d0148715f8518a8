package searcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codectx/codectx/pkg/types"
)

func TestOutline_GoFile(t *testing.T) {
	root := t.TempDir()
	content := `package app

func first() {}

// Second has a comment
func second() {}
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.go"), []byte(content), 0o644))

	s, _, _ := newTestSearcher(t, root)

	entries, err := s.Outline("app.go")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "first", entries[0].Name)
	assert.Equal(t, types.KindFunction, entries[0].Kind)
	assert.Equal(t, 3, entries[0].StartLine)

	assert.Equal(t, "second", entries[1].Name)
	assert.Equal(t, 5, entries[1].StartLine)
	assert.Equal(t, 6, entries[1].EndLine)
}

func TestOutline_MarkdownFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "doc.md"),
		[]byte("# One\ntext\n\n# Two\nmore\n"), 0o644))

	s, _, _ := newTestSearcher(t, root)

	entries, err := s.Outline("doc.md")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "One", entries[0].Name)
	assert.Equal(t, "Two", entries[1].Name)
}

func TestOutline_MissingFile(t *testing.T) {
	s, _, _ := newTestSearcher(t, t.TempDir())

	_, err := s.Outline("ghost.go")
	assert.Error(t, err)
}
