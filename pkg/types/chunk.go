package types

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path/filepath"
	"strconv"
)

// ChunkKind classifies what kind of source region a chunk covers
type ChunkKind string

const (
	KindFunction ChunkKind = "function"
	KindMethod   ChunkKind = "method"
	KindType     ChunkKind = "type"
	KindClass    ChunkKind = "class"
	KindSection  ChunkKind = "section"
	KindHeader   ChunkKind = "header"
	KindBlock    ChunkKind = "block"
	KindFile     ChunkKind = "file"
)

// Chunk is a named, line-ranged slice of a source file. It is the unit of
// indexing and retrieval.
type Chunk struct {
	// Identification
	ID   string
	Name string
	Kind ChunkKind

	// Location. FilePath is relative to the project root and always
	// slash-separated so identities are stable across operating systems.
	FilePath  string
	StartLine int
	EndLine   int

	// Text is the exact source slice for [StartLine, EndLine]
	Text string
}

// ChunkID derives the deterministic chunk identity from the file path and
// the chunk's starting line. Re-indexing the same region of the same file
// always yields the same ID.
func ChunkID(relPath string, startLine int) string {
	normalized := filepath.ToSlash(relPath)
	sum := sha256.Sum256([]byte(normalized + ":" + strconv.Itoa(startLine)))
	return hex.EncodeToString(sum[:8])
}

// NewChunk builds a chunk with its derived ID and normalized path
func NewChunk(name string, kind ChunkKind, relPath string, startLine, endLine int, text string) Chunk {
	normalized := filepath.ToSlash(relPath)
	return Chunk{
		ID:        ChunkID(normalized, startLine),
		Name:      name,
		Kind:      kind,
		FilePath:  normalized,
		StartLine: startLine,
		EndLine:   endLine,
		Text:      text,
	}
}

// Validate checks the chunk invariants
func (c *Chunk) Validate() error {
	if c.ID == "" {
		return errors.New("chunk ID cannot be empty")
	}

	if c.FilePath == "" {
		return errors.New("chunk file path cannot be empty")
	}

	if c.StartLine <= 0 || c.EndLine <= 0 {
		return errors.New("line numbers must be positive")
	}

	if c.StartLine > c.EndLine {
		return errors.New("start line must be before or equal to end line")
	}

	return nil
}

// ValidateKind checks if the chunk kind is one of the known values
func (c *Chunk) ValidateKind() error {
	switch c.Kind {
	case KindFunction, KindMethod, KindType, KindClass, KindSection, KindHeader, KindBlock, KindFile:
		return nil
	default:
		return errors.New("invalid chunk kind")
	}
}

// LineCount returns the number of lines covered by the chunk
func (c *Chunk) LineCount() int {
	return c.EndLine - c.StartLine + 1
}
