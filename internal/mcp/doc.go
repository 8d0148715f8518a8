// Package mcp exposes the index over the Model Context Protocol on stdio.
//
// The tool surface is thin dispatch: handlers validate parameters, call
// into the pipeline, searcher, or snapshot store of the active project, and
// serialize structured results as JSON text. The active project is an
// injected bundle swapped atomically by set_project, so two roots never
// share index state.
package mcp
