package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/codectx/codectx/pkg/types"
)

// FormatVersion is bumped whenever the persisted document shape changes.
// A mismatch on load invalidates the cache.
const FormatVersion = 1

// persistedIndex is the on-disk representation of a full index
type persistedIndex struct {
	Version      int               `json:"version"`
	Created      time.Time         `json:"created"`
	ProjectRoot  string            `json:"project_root"`
	Provider     string            `json:"provider"`
	Dimension    int               `json:"dimension"`
	Fingerprints map[string]string `json:"fingerprints"`
	Entries      []Entry           `json:"entries"`
}

// Persist serializes the full entry set, fingerprints, and validation tags
// to path. The write is atomic: a temp file in the same directory is
// written, synced, and renamed over the target, so a crash never leaves a
// half-written cache.
func (ix *Index) Persist(path string) error {
	ix.mu.Lock()
	snap := ix.current.Load()
	ix.mu.Unlock()

	doc := persistedIndex{
		Version:      FormatVersion,
		Created:      time.Now().UTC(),
		ProjectRoot:  ix.root,
		Provider:     ix.providerSig,
		Dimension:    snap.dimension,
		Fingerprints: snap.fingerprints,
		Entries:      snap.entries,
	}

	data, err := json.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".index-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close cache: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace cache: %w", err)
	}

	ix.persistedAt.Store(time.Now().UnixNano())
	return nil
}

// Load restores the index from a persisted document. The cache is rejected
// with types.ErrCacheInvalid when the format version, project root, or
// provider signature disagree with the running configuration, or when the
// document is corrupt. On rejection the index state is left untouched; a
// load never partially populates.
//
// A missing cache file also returns ErrCacheInvalid: absent and unusable
// trigger the same full rebuild.
func (ix *Index) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: no cache at %s", types.ErrCacheInvalid, path)
		}
		return fmt.Errorf("read cache: %w", err)
	}

	var doc persistedIndex
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: corrupt cache: %v", types.ErrCacheInvalid, err)
	}

	if doc.Version != FormatVersion {
		return fmt.Errorf("%w: format version %d, expected %d", types.ErrCacheInvalid, doc.Version, FormatVersion)
	}
	if doc.ProjectRoot != ix.root {
		return fmt.Errorf("%w: cache written for root %s", types.ErrCacheInvalid, doc.ProjectRoot)
	}
	if doc.Provider != ix.providerSig {
		return fmt.Errorf("%w: cache written by provider %s, running %s", types.ErrCacheInvalid, doc.Provider, ix.providerSig)
	}

	for i := range doc.Entries {
		if doc.Dimension != 0 && len(doc.Entries[i].Vector) != doc.Dimension {
			return fmt.Errorf("%w: entry %d has dimension %d, document says %d",
				types.ErrCacheInvalid, i, len(doc.Entries[i].Vector), doc.Dimension)
		}
	}

	if doc.Fingerprints == nil {
		doc.Fingerprints = map[string]string{}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.current.Store(&state{
		entries:      doc.Entries,
		fingerprints: doc.Fingerprints,
		dimension:    doc.Dimension,
		ready:        true,
	})
	ix.persistedAt.Store(doc.Created.UnixNano())

	return nil
}
