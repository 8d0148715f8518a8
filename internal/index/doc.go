// Package index implements the persisted vector index.
//
// The index is an explicitly owned value, constructed per project root and
// injected into the pipeline and query handlers rather than held as
// module-level state,
// so several projects can coexist in one process.
//
// Concurrency follows a copy-on-write discipline: the live entry set is an
// immutable snapshot behind an atomic pointer. Searches read the snapshot
// without locks; an indexing run builds a replacement and swaps it in when
// it commits, so readers mid-search keep seeing the pre-rebuild state.
//
// Search is a linear cosine-similarity scan. There is deliberately no
// approximate-nearest-neighbor structure here; for indexes under ~100k
// entries the scan is fast enough and keeps persistence trivial: the whole
// index round-trips through one versioned JSON document, replaced atomically
// via write-then-rename. Loads validate format version, project root, and
// embedding provider signature, and reject the cache wholesale on any
// mismatch.
package index
