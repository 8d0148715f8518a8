// Package searcher implements the query side: similarity search over the
// vector index with an LRU result cache, the regexp grep path that scans
// files directly, and on-the-fly file outlines. All three are read-only and
// safe to run while an index rebuild is in flight.
package searcher
