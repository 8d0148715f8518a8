// Package chunker divides source files into semantic chunks for embedding
// and search.
//
// Chunking is polymorphic over a small set of strategies selected by a
// static extension-to-variant table:
//
//   - Structured (Go): AST parse, one chunk per top-level function, method,
//     or type declaration. Parse failure falls back to windows.
//   - Heuristic (Python): indentation-delimited declaration scanning with a
//     bounded multi-line header lookahead.
//   - Markdown: heading-section chunks via the goldmark AST.
//   - Embedded (HTML): script/style regions extracted and line-offset into
//     file coordinates.
//   - Fallback (everything else): fixed-size windows cut on line boundaries
//     under a character budget.
//
// Every strategy shares one contract: ChunkFile(relPath, text) returns an
// ordered chunk sequence and never fails for well-formed input. Malformed
// input degrades to a coarser boundary, at worst one whole-file chunk.
//
// Chunk identity comes from types.ChunkID(path, startLine), so a
// byte-identical file always re-chunks to identical IDs and ranges.
package chunker
