package types

import "errors"

// Domain errors shared across the pipeline, index, and tool surface
var (
	// ErrNoProject indicates no project root has been configured. Fatal to
	// the requested operation, never to the process.
	ErrNoProject = errors.New("no project root configured")

	// ErrNotIndexed indicates search was requested before any successful
	// index run. The caller should index first.
	ErrNotIndexed = errors.New("project not indexed")

	// ErrIndexingInProgress indicates another indexing run holds the
	// single-writer lock.
	ErrIndexingInProgress = errors.New("indexing already in progress")

	// ErrDimensionMismatch indicates an embedding vector disagrees with the
	// index's established dimension. The offending upsert is rejected.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCacheInvalid indicates the persisted index failed version, root, or
	// provider validation on load. Triggers a full rebuild.
	ErrCacheInvalid = errors.New("persisted index is not usable")

	// ErrInvalidPattern indicates a malformed pattern in the exact-match
	// search path.
	ErrInvalidPattern = errors.New("invalid search pattern")

	// ErrFileTooLarge indicates a file exceeds the configured size ceiling.
	ErrFileTooLarge = errors.New("file exceeds size limit")

	// ErrSnapshotNotFound indicates a snapshot reference does not resolve.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)
