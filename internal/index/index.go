package index

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/codectx/codectx/pkg/types"
)

// Entry pairs a chunk with its embedding vector
type Entry struct {
	Chunk  types.Chunk `json:"chunk"`
	Vector []float32   `json:"vector"`
}

// Predicate filters entries during search. A nil predicate passes everything.
type Predicate func(types.Chunk) bool

// state is an immutable snapshot of the index. Readers load the current
// pointer and work against it lock-free; writers build a replacement and
// swap it in on commit. A rebuild therefore never disturbs an in-flight
// search.
type state struct {
	entries      []Entry
	fingerprints map[string]string
	dimension    int
	ready        bool
}

// Index owns the set of (chunk, vector) entries for one project root and
// answers similarity searches over them with a linear cosine scan. That scan
// is a deliberate design choice: O(entries x dimension) is fine below ~10^5
// entries and keeps the whole index a plain serializable value.
type Index struct {
	root        string
	providerSig string

	mu      sync.Mutex // serializes writers
	current atomic.Pointer[state]

	persistedAt atomic.Int64 // unix nanos of last successful persist
}

// New creates an empty index bound to a project root and embedding provider
// signature.
func New(root, providerSig string) *Index {
	ix := &Index{
		root:        root,
		providerSig: providerSig,
	}
	ix.current.Store(&state{fingerprints: map[string]string{}})
	return ix
}

// Upsert atomically replaces all entries belonging to the updated files with
// the new (chunk, vector) pairs. Chunks and vectors correspond by position.
// A vector whose dimension disagrees with the index's established dimension
// rejects the whole upsert and leaves the index untouched.
func (ix *Index) Upsert(chunks []types.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	cur := ix.current.Load()

	dim := cur.dimension
	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("%w: empty vector for chunk %s", types.ErrDimensionMismatch, chunks[i].ID)
		}
		if dim == 0 {
			dim = len(v)
		}
		if len(v) != dim {
			return fmt.Errorf("%w: got %d, index uses %d", types.ErrDimensionMismatch, len(v), dim)
		}
	}

	updated := make(map[string]bool, 4)
	for _, c := range chunks {
		updated[c.FilePath] = true
	}

	next := &state{
		entries:      make([]Entry, 0, len(cur.entries)+len(chunks)),
		fingerprints: cur.fingerprints,
		dimension:    dim,
		ready:        true,
	}
	for _, e := range cur.entries {
		if !updated[e.Chunk.FilePath] {
			next.entries = append(next.entries, e)
		}
	}
	for i, c := range chunks {
		next.entries = append(next.entries, Entry{Chunk: c, Vector: vectors[i]})
	}

	ix.current.Store(next)
	return nil
}

// Search returns the top limit entries passing the predicate, ranked by
// cosine similarity to the query vector in non-increasing order. Ties keep
// insertion order (stable sort).
func (ix *Index) Search(query []float32, limit int, pred Predicate) []types.SearchResult {
	snap := ix.current.Load()

	results := make([]types.SearchResult, 0, len(snap.entries))
	for _, e := range snap.entries {
		if pred != nil && !pred(e.Chunk) {
			continue
		}
		results = append(results, types.SearchResult{
			Chunk: e.Chunk,
			Score: CosineSimilarity(query, e.Vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	for i := range results {
		results[i].Rank = i + 1
	}

	return results
}

// Fingerprints returns a copy of the stored fingerprint map
func (ix *Index) Fingerprints() map[string]string {
	snap := ix.current.Load()
	out := make(map[string]string, len(snap.fingerprints))
	for k, v := range snap.fingerprints {
		out[k] = v
	}
	return out
}

// SetFingerprint commits a file's fingerprint. Called only after a
// successful chunk+embed+upsert for that file.
func (ix *Index) SetFingerprint(relPath, hash string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	cur := ix.current.Load()
	next := cur.withFingerprints()
	next.fingerprints[relPath] = hash
	ix.current.Store(next)
}

// DeleteFingerprint removes a file's fingerprint
func (ix *Index) DeleteFingerprint(relPath string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	cur := ix.current.Load()
	next := cur.withFingerprints()
	delete(next.fingerprints, relPath)
	ix.current.Store(next)
}

// RemoveFile drops all entries for one file path, leaving fingerprints
// untouched. Used when a re-indexed file no longer yields any chunks: the
// replacement set is empty, so the old entries must go.
func (ix *Index) RemoveFile(relPath string) (removed int) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	cur := ix.current.Load()
	next := &state{
		entries:      make([]Entry, 0, len(cur.entries)),
		fingerprints: cur.fingerprints,
		dimension:    cur.dimension,
		ready:        cur.ready,
	}
	for _, e := range cur.entries {
		if e.Chunk.FilePath == relPath {
			removed++
			continue
		}
		next.entries = append(next.entries, e)
	}

	if removed > 0 {
		ix.current.Store(next)
	}
	return removed
}

// PruneExcept drops entries and fingerprints for any file path not present
// in keep. Used by force rebuilds to garbage-collect files deleted from the
// tree.
func (ix *Index) PruneExcept(keep map[string]bool) (removedEntries int) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	cur := ix.current.Load()
	next := &state{
		entries:      make([]Entry, 0, len(cur.entries)),
		fingerprints: make(map[string]string, len(cur.fingerprints)),
		dimension:    cur.dimension,
		ready:        cur.ready,
	}

	for _, e := range cur.entries {
		if keep[e.Chunk.FilePath] {
			next.entries = append(next.entries, e)
		} else {
			removedEntries++
		}
	}
	for path, hash := range cur.fingerprints {
		if keep[path] {
			next.fingerprints[path] = hash
		}
	}

	ix.current.Store(next)
	return removedEntries
}

// MarkReady records that at least one index run completed, even if it
// produced zero entries (an empty but indexed project is still indexed).
func (ix *Index) MarkReady() {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	cur := ix.current.Load()
	if cur.ready {
		return
	}
	next := *cur
	next.ready = true
	ix.current.Store(&next)
}

// Ready reports whether the index has completed a run or loaded a valid
// cache.
func (ix *Index) Ready() bool {
	return ix.current.Load().ready
}

// EntryCount returns the number of indexed chunks
func (ix *Index) EntryCount() int {
	return len(ix.current.Load().entries)
}

// FileCount returns the number of distinct indexed files
func (ix *Index) FileCount() int {
	snap := ix.current.Load()
	files := make(map[string]bool, len(snap.fingerprints))
	for _, e := range snap.entries {
		files[e.Chunk.FilePath] = true
	}
	return len(files)
}

// Dimension returns the established vector dimension, 0 when empty
func (ix *Index) Dimension() int {
	return ix.current.Load().dimension
}

// Root returns the project root this index is bound to
func (ix *Index) Root() string {
	return ix.root
}

// ProviderSignature returns the embedding provider signature in use
func (ix *Index) ProviderSignature() string {
	return ix.providerSig
}

// PersistedAt returns the time of the last successful persist, zero if none
func (ix *Index) PersistedAt() time.Time {
	ns := ix.persistedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// withFingerprints clones a state sharing the entries slice but with a
// private fingerprint map.
func (s *state) withFingerprints() *state {
	next := &state{
		entries:      s.entries,
		fingerprints: make(map[string]string, len(s.fingerprints)+1),
		dimension:    s.dimension,
		ready:        s.ready,
	}
	for k, v := range s.fingerprints {
		next.fingerprints[k] = v
	}
	return next
}

// CosineSimilarity computes dot(a,b) / (|a|*|b|), defined as 0 when either
// norm is 0 or the dimensions disagree.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
