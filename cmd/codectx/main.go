package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/codectx/codectx/internal/config"
	"github.com/codectx/codectx/internal/embedder"
	"github.com/codectx/codectx/internal/index"
	"github.com/codectx/codectx/internal/mcp"
	"github.com/codectx/codectx/internal/pipeline"
	"github.com/codectx/codectx/internal/searcher"
	"github.com/codectx/codectx/internal/snapshot"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Log to stderr; stdout is reserved for the MCP protocol
	log.SetOutput(os.Stderr)

	// A missing .env is fine, environment variables still apply
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:     "codectx",
		Short:   "Semantic code index and MCP server",
		Version: fmt.Sprintf("%s (built %s)", version, buildTime),
	}

	serve := serveCmd()
	root.AddCommand(serve, indexCmd(), searchCmd())

	// Running the bare binary serves, matching how MCP clients launch it
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return serve.RunE(serve, args)
	}

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// serveCmd runs the MCP server on stdio until interrupted
func serveCmd() *cobra.Command {
	var projectRoot string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tool surface on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			if projectRoot != "" {
				cfg.ProjectRoot = projectRoot
			}

			log.Printf("codectx v%s starting...", version)

			server, err := mcp.NewServer(cfg)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			errChan := make(chan error, 1)
			go func() {
				log.Println("MCP server ready, listening on stdio...")
				errChan <- server.Serve(ctx)
			}()

			select {
			case sig := <-sigChan:
				log.Printf("Received signal %v, shutting down...", sig)
				cancel()
			case err := <-errChan:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
			}

			log.Println("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRoot, "root", "", "project root to open at startup")
	return cmd
}

// indexCmd runs one indexing pass from the command line
func indexCmd() *cobra.Command {
	var (
		projectRoot string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index a project tree and persist the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := openProject(projectRoot)
			if err != nil {
				return err
			}
			defer func() { _ = proj.embedder.Close() }()

			stats, err := proj.pipeline.Run(cmd.Context(), force)
			if err != nil {
				return err
			}

			fmt.Printf("Indexed %d files (%d skipped, %d failed): %d new chunks, %d total in %s\n",
				stats.FilesTotal, stats.FilesSkipped, stats.FilesFailed,
				stats.ChunksNew, stats.ChunksTotal, stats.Duration.Round(1e6))
			for _, e := range stats.Errors {
				fmt.Fprintf(os.Stderr, "  error: %s\n", e)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRoot, "root", ".", "project root to index")
	cmd.Flags().BoolVar(&force, "force", false, "re-index every file and prune deleted ones")
	return cmd
}

// searchCmd runs one similarity query from the command line
func searchCmd() *cobra.Command {
	var (
		projectRoot string
		query       string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Query the persisted index",
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" {
				return fmt.Errorf("--query is required")
			}

			proj, err := openProject(projectRoot)
			if err != nil {
				return err
			}
			defer func() { _ = proj.embedder.Close() }()

			resp, err := proj.searcher.Search(cmd.Context(), searcher.Request{
				Query: query,
				Limit: limit,
			})
			if err != nil {
				return err
			}

			for _, r := range resp.Results {
				fmt.Printf("%2d. %.4f  %s  %s:%d-%d\n",
					r.Rank, r.Score, r.Chunk.Name, r.Chunk.FilePath, r.Chunk.StartLine, r.Chunk.EndLine)
			}
			if len(resp.Results) == 0 {
				fmt.Println("no results")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRoot, "root", ".", "project root to query")
	cmd.Flags().StringVarP(&query, "query", "q", "", "query text")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of results")
	return cmd
}

// cliProject is the CLI-side equivalent of the server's project bundle
type cliProject struct {
	cfg      *config.Config
	embedder embedder.Embedder
	pipeline *pipeline.Pipeline
	searcher *searcher.Searcher
}

func openProject(root string) (*cliProject, error) {
	cfg, err := config.FromEnv().WithRoot(root)
	if err != nil {
		return nil, err
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, fmt.Errorf("initialize embedder: %w", err)
	}

	ix := index.New(cfg.ProjectRoot, embedder.Signature(emb))
	if err := ix.Load(cfg.CachePath()); err != nil {
		log.Printf("index cache not restored: %v", err)
	}

	snaps := snapshot.NewStore(cfg.ProjectRoot, cfg.SnapshotDir())
	pipe := pipeline.New(cfg, emb, ix, snaps)
	srch := searcher.New(cfg, emb, ix, pipe.Discover)

	return &cliProject{
		cfg:      cfg,
		embedder: emb,
		pipeline: pipe,
		searcher: srch,
	}, nil
}
