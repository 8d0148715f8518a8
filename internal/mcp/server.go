package mcp

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/codectx/codectx/internal/config"
	"github.com/codectx/codectx/internal/embedder"
	"github.com/codectx/codectx/internal/index"
	"github.com/codectx/codectx/internal/pipeline"
	"github.com/codectx/codectx/internal/searcher"
	"github.com/codectx/codectx/internal/snapshot"
	"github.com/codectx/codectx/pkg/types"
)

const (
	// ServerName is the MCP server name
	ServerName = "codectx"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// project bundles everything bound to one configured root: its config,
// embedder, index, pipeline, snapshot store, and searcher. Selecting a new
// root swaps the whole bundle, so projects never share index state.
type project struct {
	cfg      *config.Config
	embedder embedder.Embedder
	index    *index.Index
	pipeline *pipeline.Pipeline
	searcher *searcher.Searcher
	snaps    *snapshot.Store
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp  *server.MCPServer
	base *config.Config

	mu      sync.RWMutex
	current *project
}

// NewServer creates the MCP server. When the base config already names a
// project root, the project opens immediately; otherwise the caller must
// invoke set_project first.
func NewServer(base *config.Config) (*Server, error) {
	s := &Server{
		mcp:  server.NewMCPServer(ServerName, ServerVersion),
		base: base,
	}

	if base.ProjectRoot != "" {
		proj, err := s.openProject(base.ProjectRoot)
		if err != nil {
			return nil, fmt.Errorf("open project %s: %w", base.ProjectRoot, err)
		}
		s.current = proj
	}

	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer s.closeProject()
	return server.ServeStdio(s.mcp)
}

// openProject builds a project bundle for a root and tries to restore its
// persisted index. A rejected cache is not an error; the project simply
// starts unindexed.
func (s *Server) openProject(root string) (*project, error) {
	cfg, err := s.base.WithRoot(root)
	if err != nil {
		return nil, err
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, fmt.Errorf("initialize embedder: %w", err)
	}

	ix := index.New(cfg.ProjectRoot, embedder.Signature(emb))
	if err := ix.Load(cfg.CachePath()); err != nil {
		log.Printf("mcp: index cache not restored for %s: %v", cfg.ProjectRoot, err)
	} else {
		log.Printf("mcp: restored %d entries for %s", ix.EntryCount(), cfg.ProjectRoot)
	}

	snaps := snapshot.NewStore(cfg.ProjectRoot, cfg.SnapshotDir())
	pipe := pipeline.New(cfg, emb, ix, snaps)
	srch := searcher.New(cfg, emb, ix, pipe.Discover)

	return &project{
		cfg:      cfg,
		embedder: emb,
		index:    ix,
		pipeline: pipe,
		searcher: srch,
		snaps:    snaps,
	}, nil
}

// setProject swaps the active project bundle
func (s *Server) setProject(root string) (*project, error) {
	proj, err := s.openProject(root)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	old := s.current
	s.current = proj
	s.mu.Unlock()

	if old != nil {
		_ = old.embedder.Close()
	}
	return proj, nil
}

// activeProject returns the current project or types.ErrNoProject
func (s *Server) activeProject() (*project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, types.ErrNoProject
	}
	return s.current, nil
}

func (s *Server) closeProject() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		_ = s.current.embedder.Close()
		s.current = nil
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(setProjectTool(), s.handleSetProject)
	s.mcp.AddTool(indexTool(), s.handleIndex)
	s.mcp.AddTool(reindexFileTool(), s.handleReindexFile)
	s.mcp.AddTool(searchCodeTool(), s.handleSearchCode)
	s.mcp.AddTool(grepTool(), s.handleGrep)
	s.mcp.AddTool(outlineTool(), s.handleOutline)
	s.mcp.AddTool(historyTool(), s.handleHistory)
	s.mcp.AddTool(diffTool(), s.handleDiff)
	s.mcp.AddTool(statsTool(), s.handleStats)
}
