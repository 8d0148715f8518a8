package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codectx/codectx/internal/config"
	"github.com/codectx/codectx/internal/embedder"
	"github.com/codectx/codectx/internal/index"
	"github.com/codectx/codectx/pkg/types"
)

const (
	defaultLimit  = 10
	maxLimit      = 100
	queryCacheLen = 1000
	queryCacheTTL = time.Hour
)

// Filters narrow a similarity search to a subset of the index
type Filters struct {
	PathContains string   // Substring match on the chunk's relative path
	Extensions   []string // File extensions, with or without leading dot
	Kinds        []string // Chunk kinds (function, class, section, ...)
	MinScore     float64  // Drop results scoring below this
}

// Request is one similarity search
type Request struct {
	Query   string
	Limit   int
	Filters Filters
}

// Response carries ranked results and query metadata
type Response struct {
	Results  []types.SearchResult
	Duration time.Duration
	CacheHit bool
}

// cacheEntry is a cached response with its expiry
type cacheEntry struct {
	results   []types.SearchResult
	expiresAt time.Time
}

// FileLister enumerates the project's candidate files for scan paths (grep)
type FileLister func() ([]string, error)

// Searcher answers query-side operations: similarity search against the
// vector index, the exact-match grep path, and file outlines. Reads never
// block an in-flight index rebuild; they see the pre-rebuild snapshot.
type Searcher struct {
	cfg      *config.Config
	embedder embedder.Embedder
	index    *index.Index
	listFn   FileLister
	cache    *lru.Cache[[32]byte, *cacheEntry]
}

// New creates a Searcher over the given index
func New(cfg *config.Config, emb embedder.Embedder, ix *index.Index, listFn FileLister) *Searcher {
	cache, err := lru.New[[32]byte, *cacheEntry](queryCacheLen)
	if err != nil {
		panic(fmt.Sprintf("failed to create query cache: %v", err))
	}
	return &Searcher{
		cfg:      cfg,
		embedder: emb,
		index:    ix,
		listFn:   listFn,
		cache:    cache,
	}
}

// Search embeds the query and ranks index entries by cosine similarity
func (s *Searcher) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}

	if !s.index.Ready() {
		return nil, types.ErrNotIndexed
	}

	key := queryKey(req)
	if entry, ok := s.cache.Get(key); ok {
		if time.Now().Before(entry.expiresAt) {
			return &Response{
				Results:  entry.results,
				Duration: time.Since(start),
				CacheHit: true,
			}, nil
		}
		s.cache.Remove(key)
	}

	emb, err := s.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: req.Query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results := s.index.Search(emb.Vector, req.Limit, predicate(req.Filters))

	if req.Filters.MinScore > 0 {
		kept := results[:0]
		for _, r := range results {
			if r.Score >= req.Filters.MinScore {
				kept = append(kept, r)
			}
		}
		results = kept
	}

	s.cache.Add(key, &cacheEntry{
		results:   results,
		expiresAt: time.Now().Add(queryCacheTTL),
	})

	return &Response{
		Results:  results,
		Duration: time.Since(start),
	}, nil
}

// InvalidateCache drops all cached query results. Called after index runs.
func (s *Searcher) InvalidateCache() {
	s.cache.Purge()
}

// predicate compiles filters into an entry predicate, nil when unfiltered
func predicate(f Filters) index.Predicate {
	if f.PathContains == "" && len(f.Extensions) == 0 && len(f.Kinds) == 0 {
		return nil
	}

	exts := make(map[string]bool, len(f.Extensions))
	for _, e := range f.Extensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}

	kinds := make(map[string]bool, len(f.Kinds))
	for _, k := range f.Kinds {
		kinds[strings.ToLower(k)] = true
	}

	return func(c types.Chunk) bool {
		if f.PathContains != "" && !strings.Contains(c.FilePath, f.PathContains) {
			return false
		}
		if len(exts) > 0 && !exts[strings.ToLower(filepath.Ext(c.FilePath))] {
			return false
		}
		if len(kinds) > 0 && !kinds[string(c.Kind)] {
			return false
		}
		return true
	}
}

// queryKey hashes a request into a stable cache key
func queryKey(req Request) [32]byte {
	var b strings.Builder
	b.WriteString(req.Query)
	b.WriteString("|")
	fmt.Fprintf(&b, "%d", req.Limit)
	b.WriteString("|")
	b.WriteString(req.Filters.PathContains)
	b.WriteString("|")
	b.WriteString(strings.Join(req.Filters.Extensions, ","))
	b.WriteString("|")
	b.WriteString(strings.Join(req.Filters.Kinds, ","))
	b.WriteString("|")
	fmt.Fprintf(&b, "%.3f", req.Filters.MinScore)
	return sha256.Sum256([]byte(b.String()))
}
