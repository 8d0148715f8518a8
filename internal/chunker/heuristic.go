package chunker

import (
	"regexp"
	"strings"

	"github.com/codectx/codectx/pkg/types"
)

// headerLookahead bounds how many lines a multi-line declaration header may
// span before we give up waiting for its closing colon.
const headerLookahead = 20

// declPattern matches the start of an indentation-delimited declaration:
// a def, async def, or class header.
var declPattern = regexp.MustCompile(`^(\s*)(?:async\s+)?(def|class)\s+([A-Za-z_][A-Za-z0-9_]*)`)

// chunkHeuristic segments indentation-delimited source (Python) without a
// grammar. Every line indented strictly deeper than a declaration's own
// indentation, or blank, belongs to that declaration's chunk; a line at or
// below the declaration's indentation closes it. Leading content before the
// first declaration becomes a synthetic header chunk.
func (c *Chunker) chunkHeuristic(relPath, text string) []types.Chunk {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil
	}

	chunks := make([]types.Chunk, 0, 8)
	i := 0
	firstDecl := -1

	for i < len(lines) {
		m := declPattern.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}

		if firstDecl == -1 {
			firstDecl = i
			if header := headerChunk(relPath, lines, i); header != nil {
				chunks = append(chunks, *header)
			}
		}

		indent := indentWidth(m[1])
		kind := types.KindFunction
		if m[2] == "class" {
			kind = types.KindClass
		}

		// A header may span multiple lines; it ends at the first line whose
		// trimmed form ends with a colon, within a bounded lookahead.
		headerEnd := i
		for j := i; j < len(lines) && j < i+headerLookahead; j++ {
			if strings.HasSuffix(strings.TrimRight(lines[j], " \t"), ":") {
				headerEnd = j
				break
			}
			headerEnd = j
		}

		// The body extends while lines are blank or indented deeper than the
		// declaration itself.
		end := headerEnd
		for j := headerEnd + 1; j < len(lines); j++ {
			trimmed := strings.TrimSpace(lines[j])
			if trimmed == "" {
				continue
			}
			if indentWidth(leadingWhitespace(lines[j])) <= indent {
				break
			}
			end = j
		}

		// Decorators directly above the declaration belong to its chunk
		start := i
		for start > 0 && strings.HasPrefix(strings.TrimSpace(lines[start-1]), "@") {
			start--
		}

		chunks = append(chunks, types.NewChunk(m[3], kind, relPath, start+1, end+1, sliceText(lines, start+1, end+1)))
		i = end + 1
	}

	if len(chunks) == 0 {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []types.Chunk{wholeFileChunk(relPath, lines)}
	}

	return chunks
}

// headerChunk wraps the leading file content before the first declaration,
// decorators excluded so they stay with their declaration.
func headerChunk(relPath string, lines []string, firstDecl int) *types.Chunk {
	end := firstDecl
	for end > 0 && strings.HasPrefix(strings.TrimSpace(lines[end-1]), "@") {
		end--
	}
	if end == 0 {
		return nil
	}

	text := sliceText(lines, 1, end)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	chunk := types.NewChunk("header", types.KindHeader, relPath, 1, end, text)
	return &chunk
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// indentWidth measures indentation with tabs expanded to 8 columns
func indentWidth(ws string) int {
	width := 0
	for _, r := range ws {
		if r == '\t' {
			width += 8
		} else {
			width++
		}
	}
	return width
}
