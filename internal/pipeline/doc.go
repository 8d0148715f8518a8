// Package pipeline orchestrates indexing end to end: discovery, change
// detection, chunking, batched embedding, index update, and persistence.
//
// Runs are serialized by a non-blocking lock: a second Run while one is in
// flight is rejected with types.ErrIndexingInProgress rather than queued.
// Readers are unaffected: they search the index's copy-on-write snapshot
// until the run commits.
//
// Incremental behavior: a file is reprocessed only when its SHA-256
// fingerprint changed (or force is set). Fingerprints commit after a
// successful upsert, so a failed run re-examines the same files next time.
// Force runs also prune index entries and fingerprints for files deleted
// from the tree.
//
// Per-file read failures are counted and aggregated into the run's stats;
// only configuration-level problems (no root, unwalkable root) abort a run.
package pipeline
