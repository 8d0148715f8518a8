package chunker

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/codectx/codectx/pkg/types"
)

var markdownParser = goldmark.New(goldmark.WithExtensions(extension.Table))

// chunkMarkdown splits a markdown document into one chunk per heading
// section. Content before the first heading becomes a header chunk.
// Oversized sections are re-split with the window chunker; documents with no
// headings are windowed wholesale.
func (c *Chunker) chunkMarkdown(relPath, raw string) []types.Chunk {
	source := []byte(raw)
	lines := splitLines(raw)
	if len(lines) == 0 {
		return nil
	}

	doc := markdownParser.Parser().Parse(text.NewReader(source))

	type headingMark struct {
		line int
		name string
	}
	marks := make([]headingMark, 0, 8)

	offsets := lineStartOffsets(raw)
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Lines().Len() == 0 {
			continue
		}
		seg := h.Lines().At(0)
		marks = append(marks, headingMark{
			line: offsetToLine(offsets, seg.Start),
			name: headingText(h, source),
		})
	}

	if len(marks) == 0 {
		return c.chunkWindows(relPath, raw, 1)
	}
	sort.Slice(marks, func(i, j int) bool { return marks[i].line < marks[j].line })

	chunks := make([]types.Chunk, 0, len(marks)+1)

	if marks[0].line > 1 {
		preamble := sliceText(lines, 1, marks[0].line-1)
		if strings.TrimSpace(preamble) != "" {
			chunks = append(chunks, types.NewChunk("header", types.KindHeader, relPath, 1, marks[0].line-1, preamble))
		}
	}

	for i, m := range marks {
		end := len(lines)
		if i+1 < len(marks) {
			end = marks[i+1].line - 1
		}
		section := sliceText(lines, m.line, end)
		if len(section) > c.maxChars {
			chunks = append(chunks, c.chunkWindowsLabeled(relPath, m.name, section, m.line)...)
			continue
		}
		chunks = append(chunks, types.NewChunk(m.name, types.KindSection, relPath, m.line, end, section))
	}

	if len(chunks) == 0 {
		return []types.Chunk{wholeFileChunk(relPath, lines)}
	}

	return chunks
}

// headingText collects the literal text of a heading node
func headingText(h *ast.Heading, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(h, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok {
			b.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	name := strings.TrimSpace(b.String())
	if name == "" {
		name = "section"
	}
	return name
}

// lineStartOffsets returns the byte offset of each line start
func lineStartOffsets(raw string) []int {
	offsets := []int{0}
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// offsetToLine converts a byte offset to a 1-based line number
func offsetToLine(offsets []int, off int) int {
	idx := sort.Search(len(offsets), func(i int) bool { return offsets[i] > off })
	return idx
}
