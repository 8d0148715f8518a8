package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// setProjectTool returns the tool definition for set_project
func setProjectTool() mcp.Tool {
	return mcp.Tool{
		Name:        "set_project",
		Description: "Select the project root to index and query",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the project root directory",
				},
			},
			Required: []string{"path"},
		},
	}
}

// indexTool returns the tool definition for index
func indexTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index",
		Description: "Index the project tree incrementally; only changed files are reprocessed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, re-index every file and prune entries for deleted files",
					"default":     false,
				},
			},
		},
	}
}

// reindexFileTool returns the tool definition for reindex_file
func reindexFileTool() mcp.Tool {
	return mcp.Tool{
		Name:        "reindex_file",
		Description: "Re-index a single file regardless of its change fingerprint",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file": map[string]interface{}{
					"type":        "string",
					"description": "File path relative to the project root",
				},
			},
			Required: []string{"file"},
		},
	}
}

// searchCodeTool returns the tool definition for search_code
func searchCodeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_code",
		Description: "Semantic similarity search over indexed code chunks",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language or code query",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"path_contains": map[string]interface{}{
					"type":        "string",
					"description": "Only return chunks whose file path contains this substring",
				},
				"extensions": map[string]interface{}{
					"type":        "array",
					"description": "Only return chunks from files with these extensions",
					"items":       map[string]interface{}{"type": "string"},
				},
				"kinds": map[string]interface{}{
					"type":        "array",
					"description": "Only return chunks of these kinds",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"function", "method", "type", "class", "section", "header", "block", "file"},
					},
				},
				"min_score": map[string]interface{}{
					"type":        "number",
					"description": "Minimum cosine similarity score",
				},
			},
			Required: []string{"query"},
		},
	}
}

// grepTool returns the tool definition for grep
func grepTool() mcp.Tool {
	return mcp.Tool{
		Name:        "grep",
		Description: "Exact-match regular expression scan over the live project tree (bypasses the index)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"pattern": map[string]interface{}{
					"type":        "string",
					"description": "Go regular expression to match against file lines",
				},
				"path_contains": map[string]interface{}{
					"type":        "string",
					"description": "Only scan files whose path contains this substring",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of matches",
				},
			},
			Required: []string{"pattern"},
		},
	}
}

// outlineTool returns the tool definition for outline
func outlineTool() mcp.Tool {
	return mcp.Tool{
		Name:        "outline",
		Description: "List a file's chunk boundaries: names, kinds, and line ranges",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file": map[string]interface{}{
					"type":        "string",
					"description": "File path relative to the project root",
				},
			},
			Required: []string{"file"},
		},
	}
}

// historyTool returns the tool definition for history
func historyTool() mcp.Tool {
	return mcp.Tool{
		Name:        "history",
		Description: "List stored snapshots of a file, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file": map[string]interface{}{
					"type":        "string",
					"description": "File path relative to the project root",
				},
			},
			Required: []string{"file"},
		},
	}
}

// diffTool returns the tool definition for diff
func diffTool() mcp.Tool {
	return mcp.Tool{
		Name:        "diff",
		Description: "Position-aligned line diff between two snapshots of a file, or a snapshot and the live file",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file": map[string]interface{}{
					"type":        "string",
					"description": "File path relative to the project root",
				},
				"old": map[string]interface{}{
					"type":        "string",
					"description": "Snapshot ID of the old version",
				},
				"new": map[string]interface{}{
					"type":        "string",
					"description": "Snapshot ID of the new version, or \"live\" for the file on disk",
					"default":     "live",
				},
			},
			Required: []string{"file", "old"},
		},
	}
}

// statsTool returns the tool definition for stats
func statsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "stats",
		Description: "Report index status: entry and file counts, dimension, provider, last persist time",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
