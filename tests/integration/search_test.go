package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/codectx/codectx/internal/config"
	"github.com/codectx/codectx/internal/embedder"
	"github.com/codectx/codectx/internal/index"
	"github.com/codectx/codectx/internal/pipeline"
	"github.com/codectx/codectx/internal/searcher"
	"github.com/codectx/codectx/internal/snapshot"
	"github.com/codectx/codectx/pkg/types"
)

// SearchSuite indexes the fixtures once and exercises the query paths
type SearchSuite struct {
	suite.Suite
	ctx context.Context

	root   string
	search *searcher.Searcher
	emb    embedder.Embedder
}

func (s *SearchSuite) SetupSuite() {
	s.ctx = context.Background()

	wd, err := os.Getwd()
	s.Require().NoError(err)
	fixturesDir := filepath.Join(filepath.Dir(wd), "testdata", "fixtures")

	s.root, err = os.MkdirTemp("", "search-suite-*")
	s.Require().NoError(err)
	s.Require().NoError(copyTree(fixturesDir, s.root))

	cfg := &config.Config{
		ProjectRoot:   s.root,
		Extensions:    config.DefaultExtensions,
		ExcludedDirs:  config.DefaultExcludedDirs,
		MaxFileSize:   config.DefaultMaxFileSize,
		MaxChunkChars: config.DefaultMaxChunkChars,
		EmbedBatch:    4,
		GrepLimit:     config.DefaultGrepLimit,
	}

	emb, err := embedder.NewLocalProvider(nil)
	s.Require().NoError(err)
	s.emb = emb

	ix := index.New(s.root, embedder.Signature(emb))
	snaps := snapshot.NewStore(s.root, cfg.SnapshotDir())
	pipe := pipeline.New(cfg, emb, ix, snaps)
	s.search = searcher.New(cfg, emb, ix, pipe.Discover)

	_, err = pipe.Run(s.ctx, false)
	s.Require().NoError(err)
}

func (s *SearchSuite) TearDownSuite() {
	if s.emb != nil {
		_ = s.emb.Close()
	}
	if s.root != "" {
		_ = os.RemoveAll(s.root)
	}
}

func (s *SearchSuite) TestSearchReturnsRankedResults() {
	resp, err := s.search.Search(s.ctx, searcher.Request{Query: "add a value to the running total", Limit: 5})
	s.Require().NoError(err)
	s.Require().NotEmpty(resp.Results)

	for i := 1; i < len(resp.Results); i++ {
		s.GreaterOrEqual(resp.Results[i-1].Score, resp.Results[i].Score)
		s.Equal(i+1, resp.Results[i].Rank)
	}
}

func (s *SearchSuite) TestSearchWithExtensionFilter() {
	resp, err := s.search.Search(s.ctx, searcher.Request{
		Query:   "record normalizer",
		Limit:   10,
		Filters: searcher.Filters{Extensions: []string{".py"}},
	})
	s.Require().NoError(err)

	for _, r := range resp.Results {
		s.Equal("data_loader.py", r.Chunk.FilePath)
	}
}

func (s *SearchSuite) TestSearchCacheHitOnRepeat() {
	req := searcher.Request{Query: "divide the running total", Limit: 3}

	first, err := s.search.Search(s.ctx, req)
	s.Require().NoError(err)

	second, err := s.search.Search(s.ctx, req)
	s.Require().NoError(err)
	s.True(second.CacheHit)
	s.Equal(first.Results, second.Results)
}

func (s *SearchSuite) TestGrepFindsLiveText() {
	matches, err := s.search.Grep(s.ctx, searcher.GrepRequest{Pattern: `ErrDivideByZero`})
	s.Require().NoError(err)
	s.Require().NotEmpty(matches)
	s.Equal("calculator.go", matches[0].FilePath)
}

func (s *SearchSuite) TestGrepInvalidPattern() {
	_, err := s.search.Grep(s.ctx, searcher.GrepRequest{Pattern: `(`})
	s.ErrorIs(err, types.ErrInvalidPattern)
}

func (s *SearchSuite) TestOutlinePython() {
	entries, err := s.search.Outline("data_loader.py")
	s.Require().NoError(err)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	s.Contains(names, "load_records")
	s.Contains(names, "RecordNormalizer")
	s.Contains(names, "stream_records")
}

func TestSearchSuite(t *testing.T) {
	suite.Run(t, new(SearchSuite))
}
