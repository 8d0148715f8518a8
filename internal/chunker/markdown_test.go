package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codectx/codectx/pkg/types"
)

func TestChunkMarkdown_HeadingSections(t *testing.T) {
	content := `Intro paragraph before any heading.

# Install
Run the installer.

## Configure
Edit the config file.
Set the port.
`

	c := New(1500)
	chunks := c.ChunkFile("README.md", content)

	require.Len(t, chunks, 3)

	assert.Equal(t, "header", chunks[0].Name)
	assert.Equal(t, types.KindHeader, chunks[0].Kind)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Contains(t, chunks[0].Text, "Intro paragraph")

	assert.Equal(t, "Install", chunks[1].Name)
	assert.Equal(t, types.KindSection, chunks[1].Kind)
	assert.Contains(t, chunks[1].Text, "# Install")
	assert.Contains(t, chunks[1].Text, "Run the installer.")

	assert.Equal(t, "Configure", chunks[2].Name)
	assert.Contains(t, chunks[2].Text, "Set the port.")
	assert.Equal(t, chunks[1].EndLine+1, chunks[2].StartLine)
}

func TestChunkMarkdown_NoHeadings(t *testing.T) {
	c := New(1500)
	chunks := c.ChunkFile("notes.md", "just some prose\nacross two lines\n")

	require.Len(t, chunks, 1)
	assert.Equal(t, types.KindBlock, chunks[0].Kind)
}

func TestChunkMarkdown_HeadingOnFirstLine(t *testing.T) {
	c := New(1500)
	chunks := c.ChunkFile("doc.md", "# Title\nbody text\n")

	require.Len(t, chunks, 1)
	assert.Equal(t, "Title", chunks[0].Name)
	assert.Equal(t, 1, chunks[0].StartLine)
}

func TestChunkMarkdown_OversizedSectionRewindowed(t *testing.T) {
	var b strings.Builder
	b.WriteString("# Big\n")
	for i := 0; i < 100; i++ {
		b.WriteString("a paragraph line with some padding text in it\n")
	}

	c := New(200)
	chunks := c.ChunkFile("big.md", b.String())

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.Equal(t, types.KindBlock, chunk.Kind)
		assert.True(t, strings.HasPrefix(chunk.Name, "Big:"))
	}
}
