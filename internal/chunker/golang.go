package chunker

import (
	"go/ast"
	"go/parser"
	"go/token"
	"log"

	"github.com/codectx/codectx/pkg/types"
)

// chunkGo parses Go source into an AST and emits one chunk per top-level
// declaration: functions, methods, and type declarations. Doc comments are
// included in the declaration's range. A parse failure is a quality
// degradation, not an error: the file is handed to the window chunker.
func (c *Chunker) chunkGo(relPath, text string) []types.Chunk {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, relPath, text, parser.ParseComments)
	if err != nil || file == nil {
		log.Printf("chunker: structural parse of %s failed, falling back to windows: %v", relPath, err)
		return c.chunkWindows(relPath, text, 1)
	}

	lines := splitLines(text)
	chunks := make([]types.Chunk, 0, len(file.Decls))

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			start, end := declRange(fset, d, d.Doc)
			kind := types.KindFunction
			if d.Recv != nil {
				kind = types.KindMethod
			}
			chunks = append(chunks, types.NewChunk(d.Name.Name, kind, relPath, start, end, sliceText(lines, start, end)))

		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			name := genDeclName(d)
			if name == "" {
				continue
			}
			start, end := declRange(fset, d, d.Doc)
			chunks = append(chunks, types.NewChunk(name, types.KindType, relPath, start, end, sliceText(lines, start, end)))
		}
	}

	if len(chunks) == 0 && len(lines) > 0 {
		return []types.Chunk{wholeFileChunk(relPath, lines)}
	}

	return chunks
}

// declRange returns the 1-based inclusive line span of a declaration,
// extended to cover its doc comment when present.
func declRange(fset *token.FileSet, node ast.Node, doc *ast.CommentGroup) (int, int) {
	start := fset.Position(node.Pos()).Line
	if doc != nil {
		if docLine := fset.Position(doc.Pos()).Line; docLine < start {
			start = docLine
		}
	}
	end := fset.Position(node.End()).Line
	return start, end
}

// genDeclName extracts the first type name from a type declaration group
func genDeclName(d *ast.GenDecl) string {
	for _, spec := range d.Specs {
		if ts, ok := spec.(*ast.TypeSpec); ok {
			return ts.Name.Name
		}
	}
	return ""
}
