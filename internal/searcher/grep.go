package searcher

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/codectx/codectx/pkg/types"
)

// GrepRequest is one exact-match scan over the live tree
type GrepRequest struct {
	Pattern      string
	PathContains string
	Limit        int
}

// Grep compiles the pattern as a regular expression and scans the project's
// candidate files line by line. The index is bypassed entirely: this path
// reads the tree as it is on disk, so it may run concurrently with an
// indexing rebuild. A malformed pattern aborts only this call.
func (s *Searcher) Grep(ctx context.Context, req GrepRequest) ([]types.GrepMatch, error) {
	if req.Pattern == "" {
		return nil, fmt.Errorf("%w: empty pattern", types.ErrInvalidPattern)
	}

	re, err := regexp.Compile(req.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidPattern, err)
	}

	limit := req.Limit
	if limit <= 0 || limit > s.cfg.GrepLimit {
		limit = s.cfg.GrepLimit
	}

	paths, err := s.listFn()
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	matches := make([]types.GrepMatch, 0, 32)
	for _, relPath := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if req.PathContains != "" && !strings.Contains(relPath, req.PathContains) {
			continue
		}

		fileMatches, err := s.grepFile(relPath, re, limit-len(matches))
		if err != nil {
			// Unreadable files are skipped, consistent with indexing
			continue
		}
		matches = append(matches, fileMatches...)
		if len(matches) >= limit {
			break
		}
	}

	return matches, nil
}

// grepFile scans one file, returning at most limit matches
func (s *Searcher) grepFile(relPath string, re *regexp.Regexp, limit int) ([]types.GrepMatch, error) {
	f, err := os.Open(filepath.Join(s.cfg.ProjectRoot, filepath.FromSlash(relPath)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var matches []types.GrepMatch
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if re.MatchString(text) {
			matches = append(matches, types.GrepMatch{
				FilePath: relPath,
				Line:     line,
				Text:     text,
			})
			if len(matches) >= limit {
				break
			}
		}
	}

	return matches, scanner.Err()
}
