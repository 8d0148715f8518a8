package types

import "time"

// SearchResult is a single similarity search hit
type SearchResult struct {
	Chunk Chunk
	Score float64 // Cosine similarity, range [-1, 1]
	Rank  int     // Position in result set (1-based)
}

// GrepMatch is a single line hit from the exact-match scan path
type GrepMatch struct {
	FilePath string // Relative, slash-separated
	Line     int    // 1-based
	Text     string // The matching line, trailing newline stripped
}

// OutlineEntry describes one chunk boundary of a file without its text
type OutlineEntry struct {
	Name      string
	Kind      ChunkKind
	StartLine int
	EndLine   int
}

// SnapshotInfo describes one stored snapshot of a file
type SnapshotInfo struct {
	ID        string
	Timestamp time.Time
	SizeBytes int64
}

// DiffResult summarizes a position-aligned comparison of two file versions
type DiffResult struct {
	Additions int
	Deletions int
	Unified   string
}

// IndexStats summarizes one indexing run
type IndexStats struct {
	FilesTotal   int
	FilesSkipped int
	FilesFailed  int
	ChunksNew    int
	ChunksTotal  int
	Duration     time.Duration
	Errors       []string
}
