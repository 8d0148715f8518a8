package chunker

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/codectx/codectx/pkg/types"
)

// chunkEmbedded extracts <script> and <style> regions from markup, offsets
// their content into the outer file's line coordinates, and chunks each
// region. Markup with no embedded region degrades to a single whole-file
// chunk.
func (c *Chunker) chunkEmbedded(relPath, raw string) []types.Chunk {
	z := html.NewTokenizer(strings.NewReader(raw))
	line := 1
	chunks := make([]types.Chunk, 0, 4)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}

		tok := string(z.Raw())
		if tt == html.StartTagToken {
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				line += strings.Count(tok, "\n")
				regionStart := line
				content, consumed := collectRegion(z)
				line += consumed
				if strings.TrimSpace(content) != "" {
					chunks = append(chunks, c.chunkWindowsLabeled(relPath, tag, content, regionStart)...)
				}
				continue
			}
		}
		line += strings.Count(tok, "\n")
	}

	if len(chunks) == 0 {
		lines := splitLines(raw)
		if len(lines) == 0 {
			return nil
		}
		return []types.Chunk{wholeFileChunk(relPath, lines)}
	}

	return chunks
}

// collectRegion consumes tokens until the region's end tag, returning the
// raw content and the number of newlines consumed (content plus end tag).
func collectRegion(z *html.Tokenizer) (string, int) {
	var b strings.Builder
	consumed := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		tok := string(z.Raw())
		consumed += strings.Count(tok, "\n")
		if tt == html.EndTagToken {
			break
		}
		b.WriteString(tok)
	}

	return b.String(), consumed
}
