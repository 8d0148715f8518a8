package snapshot

import (
	"fmt"
	"strings"

	"github.com/codectx/codectx/pkg/types"
)

// Diff compares two refs of a file and returns a position-aligned line
// diff. Refs are snapshot IDs or RefLive for the file currently on disk.
//
// The comparison is by line index, not minimal edit distance: when the two
// sides differ at an index, a deletion of the old line and an addition of
// the new line are emitted; where one side runs out, the remainder is all
// additions or all deletions. A single inserted line therefore cascades
// into reported replacements for every following line. That over-reporting
// is a documented property of the format, kept for predictability.
func (s *Store) Diff(relPath, oldRef, newRef string) (*types.DiffResult, error) {
	oldContent, err := s.Resolve(relPath, oldRef)
	if err != nil {
		return nil, err
	}
	newContent, err := s.Resolve(relPath, newRef)
	if err != nil {
		return nil, err
	}

	return DiffContent(relPath, oldRef, newRef, oldContent, newContent), nil
}

// DiffContent performs the position-aligned comparison on raw content
func DiffContent(relPath, oldRef, newRef string, oldContent, newContent []byte) *types.DiffResult {
	oldLines := toLines(oldContent)
	newLines := toLines(newContent)

	var unified strings.Builder
	fmt.Fprintf(&unified, "--- %s@%s\n", relPath, refLabel(oldRef))
	fmt.Fprintf(&unified, "+++ %s@%s\n", relPath, refLabel(newRef))

	result := &types.DiffResult{}

	n := len(oldLines)
	if len(newLines) > n {
		n = len(newLines)
	}

	for i := 0; i < n; i++ {
		hasOld := i < len(oldLines)
		hasNew := i < len(newLines)

		switch {
		case hasOld && hasNew && oldLines[i] == newLines[i]:
			continue
		case hasOld && hasNew:
			fmt.Fprintf(&unified, "@@ line %d @@\n-%s\n+%s\n", i+1, oldLines[i], newLines[i])
			result.Deletions++
			result.Additions++
		case hasOld:
			fmt.Fprintf(&unified, "@@ line %d @@\n-%s\n", i+1, oldLines[i])
			result.Deletions++
		default:
			fmt.Fprintf(&unified, "@@ line %d @@\n+%s\n", i+1, newLines[i])
			result.Additions++
		}
	}

	result.Unified = unified.String()
	return result
}

func toLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	text := strings.TrimSuffix(string(content), "\n")
	return strings.Split(text, "\n")
}

func refLabel(ref string) string {
	if ref == "" || ref == RefLive {
		return RefLive
	}
	return ref
}
