package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codectx/codectx/internal/searcher"
	"github.com/codectx/codectx/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeNoProject          = -32001 // No project root configured
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
	ErrorCodeNotIndexed         = -32003 // Project not indexed yet
	ErrorCodeInvalidPattern     = -32004 // Malformed grep pattern
)

// handleSetProject handles the set_project tool invocation
func (s *Server) handleSetProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, paramError("path", "missing or empty")
	}

	proj, err := s.setProject(path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid project root", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"project_root": proj.cfg.ProjectRoot,
		"indexed":      proj.index.Ready(),
		"entries":      proj.index.EntryCount(),
		"provider":     proj.index.ProviderSignature(),
	})), nil
}

// handleIndex handles the index tool invocation
func (s *Server) handleIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proj, err := s.activeProject()
	if err != nil {
		return nil, noProjectError()
	}

	force := false
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		force, _ = args["force"].(bool)
	}

	stats, err := proj.pipeline.Run(ctx, force)
	if err != nil {
		return nil, indexRunError(err)
	}

	proj.searcher.InvalidateCache()

	response := map[string]interface{}{
		"files_total":   stats.FilesTotal,
		"files_skipped": stats.FilesSkipped,
		"files_failed":  stats.FilesFailed,
		"chunks_new":    stats.ChunksNew,
		"chunks_total":  stats.ChunksTotal,
		"duration_ms":   stats.Duration.Milliseconds(),
	}
	if len(stats.Errors) > 0 {
		errorCount := len(stats.Errors)
		if errorCount > 5 {
			response["errors"] = stats.Errors[:5]
		} else {
			response["errors"] = stats.Errors
		}
		response["error_count"] = errorCount
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleReindexFile handles the reindex_file tool invocation
func (s *Server) handleReindexFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proj, err := s.activeProject()
	if err != nil {
		return nil, noProjectError()
	}

	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	file, ok := args["file"].(string)
	if !ok || file == "" {
		return nil, paramError("file", "missing or empty")
	}

	stats, err := proj.pipeline.ReindexFile(ctx, file)
	if err != nil {
		return nil, indexRunError(err)
	}

	proj.searcher.InvalidateCache()

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"file":         file,
		"chunks_new":   stats.ChunksNew,
		"chunks_total": stats.ChunksTotal,
		"duration_ms":  stats.Duration.Milliseconds(),
	})), nil
}

// handleSearchCode handles the search_code tool invocation
func (s *Server) handleSearchCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proj, err := s.activeProject()
	if err != nil {
		return nil, noProjectError()
	}

	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, paramError("query", "missing or empty")
	}

	req := searcher.Request{
		Query: query,
		Limit: getIntDefault(args, "limit", 10),
		Filters: searcher.Filters{
			PathContains: getStringDefault(args, "path_contains", ""),
			Extensions:   getStringSlice(args, "extensions"),
			Kinds:        getStringSlice(args, "kinds"),
			MinScore:     getFloatDefault(args, "min_score", 0),
		},
	}

	resp, err := proj.searcher.Search(ctx, req)
	if err != nil {
		if errors.Is(err, types.ErrNotIndexed) {
			return nil, newMCPError(ErrorCodeNotIndexed, "project not indexed; run the index tool first", nil)
		}
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{"error": err.Error()})
	}

	results := make([]map[string]interface{}, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = map[string]interface{}{
			"rank":       r.Rank,
			"score":      r.Score,
			"chunk_id":   r.Chunk.ID,
			"name":       r.Chunk.Name,
			"kind":       string(r.Chunk.Kind),
			"file":       r.Chunk.FilePath,
			"start_line": r.Chunk.StartLine,
			"end_line":   r.Chunk.EndLine,
			"text":       r.Chunk.Text,
		}
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"results":     results,
		"total":       len(results),
		"cache_hit":   resp.CacheHit,
		"duration_ms": resp.Duration.Milliseconds(),
	})), nil
}

// handleGrep handles the grep tool invocation
func (s *Server) handleGrep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proj, err := s.activeProject()
	if err != nil {
		return nil, noProjectError()
	}

	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	pattern, ok := args["pattern"].(string)
	if !ok || pattern == "" {
		return nil, paramError("pattern", "missing or empty")
	}

	matches, err := proj.searcher.Grep(ctx, searcher.GrepRequest{
		Pattern:      pattern,
		PathContains: getStringDefault(args, "path_contains", ""),
		Limit:        getIntDefault(args, "limit", 0),
	})
	if err != nil {
		if errors.Is(err, types.ErrInvalidPattern) {
			return nil, newMCPError(ErrorCodeInvalidPattern, "invalid pattern", map[string]interface{}{"error": err.Error()})
		}
		return nil, newMCPError(ErrorCodeInternalError, "grep failed", map[string]interface{}{"error": err.Error()})
	}

	out := make([]map[string]interface{}, len(matches))
	for i, m := range matches {
		out[i] = map[string]interface{}{
			"file": m.FilePath,
			"line": m.Line,
			"text": m.Text,
		}
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"matches": out,
		"total":   len(out),
	})), nil
}

// handleOutline handles the outline tool invocation
func (s *Server) handleOutline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proj, err := s.activeProject()
	if err != nil {
		return nil, noProjectError()
	}

	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	file, ok := args["file"].(string)
	if !ok || file == "" {
		return nil, paramError("file", "missing or empty")
	}

	entries, err := proj.searcher.Outline(file)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "outline failed", map[string]interface{}{"error": err.Error()})
	}

	out := make([]map[string]interface{}, len(entries))
	for i, e := range entries {
		out[i] = map[string]interface{}{
			"name":       e.Name,
			"kind":       string(e.Kind),
			"start_line": e.StartLine,
			"end_line":   e.EndLine,
		}
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"file":   file,
		"chunks": out,
	})), nil
}

// handleHistory handles the history tool invocation
func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proj, err := s.activeProject()
	if err != nil {
		return nil, noProjectError()
	}

	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	file, ok := args["file"].(string)
	if !ok || file == "" {
		return nil, paramError("file", "missing or empty")
	}

	snaps, err := proj.snaps.List(file)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "history failed", map[string]interface{}{"error": err.Error()})
	}

	out := make([]map[string]interface{}, len(snaps))
	for i, sn := range snaps {
		out[i] = map[string]interface{}{
			"id":         sn.ID,
			"timestamp":  sn.Timestamp.Format("2006-01-02T15:04:05.000000000Z07:00"),
			"size_bytes": sn.SizeBytes,
		}
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"file":      file,
		"snapshots": out,
	})), nil
}

// handleDiff handles the diff tool invocation
func (s *Server) handleDiff(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proj, err := s.activeProject()
	if err != nil {
		return nil, noProjectError()
	}

	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	file, ok := args["file"].(string)
	if !ok || file == "" {
		return nil, paramError("file", "missing or empty")
	}
	oldRef, ok := args["old"].(string)
	if !ok || oldRef == "" {
		return nil, paramError("old", "missing or empty")
	}
	newRef := getStringDefault(args, "new", "live")

	result, err := proj.snaps.Diff(file, oldRef, newRef)
	if err != nil {
		if errors.Is(err, types.ErrSnapshotNotFound) {
			return nil, newMCPError(ErrorCodeInvalidParams, "snapshot not found", map[string]interface{}{"error": err.Error()})
		}
		return nil, newMCPError(ErrorCodeInternalError, "diff failed", map[string]interface{}{"error": err.Error()})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"file":      file,
		"old":       oldRef,
		"new":       newRef,
		"additions": result.Additions,
		"deletions": result.Deletions,
		"unified":   result.Unified,
	})), nil
}

// handleStats handles the stats tool invocation
func (s *Server) handleStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	proj, err := s.activeProject()
	if err != nil {
		return nil, noProjectError()
	}

	response := map[string]interface{}{
		"project_root": proj.cfg.ProjectRoot,
		"indexed":      proj.index.Ready(),
		"entries":      proj.index.EntryCount(),
		"files":        proj.index.FileCount(),
		"dimension":    proj.index.Dimension(),
		"provider":     proj.index.ProviderSignature(),
	}
	if t := proj.index.PersistedAt(); !t.IsZero() {
		response["persisted_at"] = t.Format("2006-01-02T15:04:05Z07:00")
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{Code: code, Message: message, Data: data}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

// Error implements the error interface
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func paramError(param, reason string) error {
	return newMCPError(ErrorCodeInvalidParams, param+" parameter is required", map[string]interface{}{
		"param":  param,
		"reason": reason,
	})
}

func noProjectError() error {
	return newMCPError(ErrorCodeNoProject, "no project configured; call set_project first", nil)
}

// indexRunError maps pipeline errors to MCP error codes
func indexRunError(err error) error {
	switch {
	case errors.Is(err, types.ErrIndexingInProgress):
		return newMCPError(ErrorCodeIndexingInProgress, "an indexing run is already in progress", nil)
	case errors.Is(err, types.ErrNoProject):
		return noProjectError()
	default:
		return newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{"error": err.Error()})
	}
}

// formatJSON renders a response map as indented JSON text
func formatJSON(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}", err.Error())
	}
	return string(data)
}

func getIntDefault(args map[string]interface{}, key string, def int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return def
}

func getFloatDefault(args map[string]interface{}, key string, def float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return def
}

func getStringDefault(args map[string]interface{}, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
