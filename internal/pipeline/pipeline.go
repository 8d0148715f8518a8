package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codectx/codectx/internal/chunker"
	"github.com/codectx/codectx/internal/config"
	"github.com/codectx/codectx/internal/embedder"
	"github.com/codectx/codectx/internal/index"
	"github.com/codectx/codectx/internal/snapshot"
	"github.com/codectx/codectx/internal/tracker"
	"github.com/codectx/codectx/pkg/types"
)

// embedWorkers bounds concurrent embedding batches
const embedWorkers = 4

// Pipeline orchestrates one project's indexing: discovery, change
// detection, chunking, embedding, index update, and persistence. All
// collaborators are injected; the pipeline owns no global state.
type Pipeline struct {
	cfg      *config.Config
	tracker  *tracker.Tracker
	chunker  *chunker.Chunker
	embedder embedder.Embedder
	index    *index.Index
	snaps    *snapshot.Store

	lock runLock
}

// New assembles a pipeline for the configured project root
func New(cfg *config.Config, emb embedder.Embedder, ix *index.Index, snaps *snapshot.Store) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		tracker:  tracker.New(),
		chunker:  chunker.New(cfg.MaxChunkChars),
		embedder: emb,
		index:    ix,
		snaps:    snaps,
	}
}

// Index returns the pipeline's index for query-side collaborators
func (p *Pipeline) Index() *index.Index {
	return p.index
}

// candidate is one discovered file
type candidate struct {
	absPath string
	relPath string // slash-separated
}

// fileWork is a changed file with its chunks, awaiting embedding
type fileWork struct {
	relPath     string
	fingerprint string
	chunks      []types.Chunk
}

// Run executes a full indexing pass. With force set, every file is
// reprocessed and entries for files no longer present are pruned; otherwise
// only files whose fingerprints changed are touched. Per-file failures are
// counted and reported in the stats, never fatal to the run. A second Run
// while one is active returns types.ErrIndexingInProgress.
func (p *Pipeline) Run(ctx context.Context, force bool) (*types.IndexStats, error) {
	if p.cfg.ProjectRoot == "" {
		return nil, types.ErrNoProject
	}
	if !p.lock.TryAcquire() {
		return nil, types.ErrIndexingInProgress
	}
	defer p.lock.Release()

	start := time.Now()
	stats := &types.IndexStats{}

	candidates, err := p.discover()
	if err != nil {
		return nil, fmt.Errorf("discover files: %w", err)
	}
	stats.FilesTotal = len(candidates)

	stored := p.index.Fingerprints()
	work := make([]*fileWork, 0, len(candidates))

	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hash, err := p.tracker.Fingerprint(cand.absPath)
		if err != nil {
			stats.FilesFailed++
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", cand.relPath, err))
			continue
		}

		if !p.tracker.ShouldReindex(cand.relPath, hash, stored, force) {
			stats.FilesSkipped++
			continue
		}

		content, err := os.ReadFile(cand.absPath)
		if err != nil {
			stats.FilesFailed++
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", cand.relPath, err))
			continue
		}

		p.saveSnapshot(cand.relPath, hash)

		work = append(work, &fileWork{
			relPath:     cand.relPath,
			fingerprint: hash,
			chunks:      p.chunker.ChunkFile(cand.relPath, string(content)),
		})
	}

	if err := p.embedAndCommit(ctx, work, stats); err != nil {
		return nil, err
	}

	if force {
		keep := make(map[string]bool, len(candidates))
		for _, cand := range candidates {
			keep[cand.relPath] = true
		}
		if removed := p.index.PruneExcept(keep); removed > 0 {
			log.Printf("pipeline: pruned %d entries for deleted files", removed)
		}
	}

	p.index.MarkReady()

	if err := p.index.Persist(p.cfg.CachePath()); err != nil {
		return nil, fmt.Errorf("persist index: %w", err)
	}

	stats.ChunksTotal = p.index.EntryCount()
	stats.Duration = time.Since(start)
	return stats, nil
}

// ReindexFile forces one file through the pipeline regardless of its
// fingerprint.
func (p *Pipeline) ReindexFile(ctx context.Context, relPath string) (*types.IndexStats, error) {
	if p.cfg.ProjectRoot == "" {
		return nil, types.ErrNoProject
	}
	if !p.lock.TryAcquire() {
		return nil, types.ErrIndexingInProgress
	}
	defer p.lock.Release()

	start := time.Now()
	stats := &types.IndexStats{FilesTotal: 1}

	relPath = filepath.ToSlash(relPath)
	absPath := filepath.Join(p.cfg.ProjectRoot, filepath.FromSlash(relPath))

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", relPath, err)
	}
	if info.Size() > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", types.ErrFileTooLarge, relPath, info.Size(), p.cfg.MaxFileSize)
	}

	hash, err := p.tracker.Fingerprint(absPath)
	if err != nil {
		return nil, fmt.Errorf("fingerprint %s: %w", relPath, err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", relPath, err)
	}

	p.saveSnapshot(relPath, hash)

	work := []*fileWork{{
		relPath:     relPath,
		fingerprint: hash,
		chunks:      p.chunker.ChunkFile(relPath, string(content)),
	}}

	if err := p.embedAndCommit(ctx, work, stats); err != nil {
		return nil, err
	}

	p.index.MarkReady()
	if err := p.index.Persist(p.cfg.CachePath()); err != nil {
		return nil, fmt.Errorf("persist index: %w", err)
	}

	stats.ChunksTotal = p.index.EntryCount()
	stats.Duration = time.Since(start)
	return stats, nil
}

// saveSnapshot stores a pre-change copy of the file unless the newest
// stored snapshot already holds identical content. Force runs re-visit
// unchanged files, and repeating their snapshots would only pile up
// duplicates. Snapshot failures are logged, never fatal to indexing.
func (p *Pipeline) saveSnapshot(relPath, contentHash string) {
	if p.snaps == nil {
		return
	}
	if latest, err := p.snaps.LatestDigest(relPath); err == nil && latest == contentHash {
		return
	}
	if _, err := p.snaps.Save(relPath); err != nil {
		log.Printf("pipeline: snapshot of %s failed: %v", relPath, err)
	}
}

// embedAndCommit embeds all accumulated chunks in fixed-size batches and
// upserts them file by file, committing each file's fingerprint only after
// its entries are in the index. Batch results land in position-addressed
// slots, so chunk/vector pairing is deterministic no matter which batch
// finishes first.
func (p *Pipeline) embedAndCommit(ctx context.Context, work []*fileWork, stats *types.IndexStats) error {
	texts := make([]string, 0, 64)
	for _, w := range work {
		for _, c := range w.chunks {
			texts = append(texts, c.Text)
		}
	}

	vectors := make([][]float32, len(texts))
	if len(texts) > 0 {
		batch := p.cfg.EmbedBatch
		if batch <= 0 {
			batch = config.DefaultEmbedBatch
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(embedWorkers)

		for off := 0; off < len(texts); off += batch {
			lo, hi := off, off+batch
			if hi > len(texts) {
				hi = len(texts)
			}
			g.Go(func() error {
				// Cancellation is honored between batches, not mid-batch
				if err := gctx.Err(); err != nil {
					return err
				}
				resp, err := p.embedder.GenerateBatch(gctx, embedder.BatchEmbeddingRequest{Texts: texts[lo:hi]})
				if err != nil {
					return fmt.Errorf("embed batch %d-%d: %w", lo, hi, err)
				}
				for i, emb := range resp.Embeddings {
					vectors[lo+i] = emb.Vector
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}
	}

	pos := 0
	for _, w := range work {
		fileVectors := vectors[pos : pos+len(w.chunks)]
		pos += len(w.chunks)

		if len(w.chunks) == 0 {
			// A file that stopped yielding chunks still replaces its
			// old entry set, now with nothing. Leaving the previous
			// chunks searchable while committing the new fingerprint
			// would strand them until the next force rebuild.
			p.index.RemoveFile(w.relPath)
			p.index.SetFingerprint(w.relPath, w.fingerprint)
			continue
		}

		if err := p.index.Upsert(w.chunks, fileVectors); err != nil {
			return fmt.Errorf("upsert %s: %w", w.relPath, err)
		}
		p.index.SetFingerprint(w.relPath, w.fingerprint)
		stats.ChunksNew += len(w.chunks)
	}

	return nil
}

// discover walks the project root collecting candidate files: included
// extensions only, excluded and hidden directories skipped, and files over
// the size ceiling left out.
func (p *Pipeline) discover() ([]candidate, error) {
	var out []candidate

	err := filepath.Walk(p.cfg.ProjectRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal
			log.Printf("pipeline: skipping %s: %v", path, err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			name := info.Name()
			if path != p.cfg.ProjectRoot && (strings.HasPrefix(name, ".") || p.cfg.ExcludesDir(name)) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		if !p.cfg.IncludesExtension(path) {
			return nil
		}
		if info.Size() > p.cfg.MaxFileSize {
			return nil
		}

		rel, err := filepath.Rel(p.cfg.ProjectRoot, path)
		if err != nil {
			return nil
		}

		out = append(out, candidate{
			absPath: path,
			relPath: filepath.ToSlash(rel),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Discover exposes the discovery walk for read-only collaborators (grep)
func (p *Pipeline) Discover() ([]string, error) {
	candidates, err := p.discover()
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(candidates))
	for i, c := range candidates {
		paths[i] = c.relPath
	}
	return paths, nil
}
