// Package types defines the shared domain model: chunks, search and grep
// results, snapshot metadata, and the sentinel errors used across the
// pipeline, index, and tool surface.
//
// Chunk identity is deterministic: ChunkID hashes the slash-normalized
// relative path and starting line, so re-indexing an unchanged region always
// produces the same ID.
package types
