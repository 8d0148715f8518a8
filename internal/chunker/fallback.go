package chunker

import (
	"fmt"
	"path/filepath"

	"github.com/codectx/codectx/pkg/types"
)

// chunkWindows is the generic fallback: sequential, non-overlapping windows
// bounded by the character budget, cut on line boundaries only. startLine
// maps local line 1 into the outer file's coordinate space.
func (c *Chunker) chunkWindows(relPath, text string, startLine int) []types.Chunk {
	return c.chunkWindowsLabeled(relPath, filepath.Base(relPath), text, startLine)
}

// chunkWindowsLabeled is chunkWindows with an explicit name label, used by
// the embedded chunker to tag script/style regions.
func (c *Chunker) chunkWindowsLabeled(relPath, label, text string, startLine int) []types.Chunk {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil
	}

	chunks := make([]types.Chunk, 0, len(text)/c.maxChars+1)

	emit := func(from, to int) {
		// from and to are 0-based inclusive local indexes
		fileStart := startLine + from
		fileEnd := startLine + to
		name := fmt.Sprintf("%s:%d-%d", label, fileStart, fileEnd)
		chunks = append(chunks, types.NewChunk(name, types.KindBlock, relPath, fileStart, fileEnd, sliceText(lines, from+1, to+1)))
	}

	winStart := 0
	size := 0
	for i, line := range lines {
		lineLen := len(line) + 1 // account for the newline
		if i > winStart && size+lineLen > c.maxChars {
			emit(winStart, i-1)
			winStart = i
			size = 0
		}
		size += lineLen
	}
	emit(winStart, len(lines)-1)

	return chunks
}
