package searcher

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/codectx/codectx/internal/chunker"
	"github.com/codectx/codectx/pkg/types"
)

// Outline chunks a file on the fly (no embedding, no index access) and
// returns its chunk boundaries: names, kinds, and line ranges.
func (s *Searcher) Outline(relPath string) ([]types.OutlineEntry, error) {
	relPath = filepath.ToSlash(relPath)
	content, err := os.ReadFile(filepath.Join(s.cfg.ProjectRoot, filepath.FromSlash(relPath)))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", relPath, err)
	}

	chunks := chunker.New(s.cfg.MaxChunkChars).ChunkFile(relPath, string(content))

	entries := make([]types.OutlineEntry, len(chunks))
	for i, c := range chunks {
		entries[i] = types.OutlineEntry{
			Name:      c.Name,
			Kind:      c.Kind,
			StartLine: c.StartLine,
			EndLine:   c.EndLine,
		}
	}

	return entries, nil
}
