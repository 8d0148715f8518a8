package chunker

import (
	"path/filepath"
	"strings"

	"github.com/codectx/codectx/pkg/types"
)

// Variant identifies the chunking strategy applied to a file. Dispatch is a
// static extension-to-variant table, not per-call type inspection.
type Variant int

const (
	// VariantStructured parses a formal grammar (Go) into an AST
	VariantStructured Variant = iota
	// VariantHeuristic scans indentation-delimited declarations (Python)
	VariantHeuristic
	// VariantMarkdown splits markdown by heading sections
	VariantMarkdown
	// VariantEmbedded extracts script/style regions from markup
	VariantEmbedded
	// VariantFallback cuts fixed-size windows on line boundaries
	VariantFallback
)

// extensionTable maps lowercase file extensions to chunking variants.
// Anything absent falls back to the generic window chunker.
var extensionTable = map[string]Variant{
	".go":       VariantStructured,
	".py":       VariantHeuristic,
	".md":       VariantMarkdown,
	".markdown": VariantMarkdown,
	".html":     VariantEmbedded,
	".htm":      VariantEmbedded,
}

// Chunker converts raw file text into an ordered sequence of named,
// line-numbered chunks. It never fails on well-formed input: malformed
// input degrades to a coarser chunk boundary.
type Chunker struct {
	maxChars int
}

// New creates a Chunker with the given maximum chunk character budget
func New(maxChars int) *Chunker {
	if maxChars <= 0 {
		maxChars = 1500
	}
	return &Chunker{maxChars: maxChars}
}

// VariantFor returns the chunking variant selected for a path
func (c *Chunker) VariantFor(path string) Variant {
	ext := strings.ToLower(filepath.Ext(path))
	if v, ok := extensionTable[ext]; ok {
		return v
	}
	return VariantFallback
}

// ChunkFile chunks source text using the variant selected by the file's
// extension. relPath is recorded on each chunk and determines chunk
// identity; it must be relative to the project root.
func (c *Chunker) ChunkFile(relPath, text string) []types.Chunk {
	if text == "" {
		return nil
	}

	switch c.VariantFor(relPath) {
	case VariantStructured:
		return c.chunkGo(relPath, text)
	case VariantHeuristic:
		return c.chunkHeuristic(relPath, text)
	case VariantMarkdown:
		return c.chunkMarkdown(relPath, text)
	case VariantEmbedded:
		return c.chunkEmbedded(relPath, text)
	default:
		return c.chunkWindows(relPath, text, 1)
	}
}

// splitLines splits text into lines without the trailing separator. A final
// newline does not produce a phantom empty line.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 1 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// sliceText joins the 1-based inclusive line range [start, end]
func sliceText(lines []string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}

// wholeFileChunk wraps an entire file as a single chunk
func wholeFileChunk(relPath string, lines []string) types.Chunk {
	return types.NewChunk(filepath.Base(relPath), types.KindFile, relPath, 1, len(lines), strings.Join(lines, "\n"))
}
