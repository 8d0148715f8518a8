package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHTTPProvider(endpoint string) *httpProvider {
	return &httpProvider{
		name:      ProviderOpenAI,
		endpoint:  endpoint,
		apiKey:    "test-key",
		model:     "test-model",
		dimension: 2,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

func TestGenerateBatch_PairsVectorsByResponseIndex(t *testing.T) {
	// The API may return items out of input order; the index field, not
	// arrival order, decides which text each vector belongs to.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model": "test-model",
			"data": []map[string]interface{}{
				{"embedding": []float32{0, 1}, "index": 1},
				{"embedding": []float32{1, 0}, "index": 0},
			},
		})
	}))
	defer srv.Close()

	p := newTestHTTPProvider(srv.URL)
	resp, err := p.GenerateBatch(context.Background(), BatchEmbeddingRequest{Texts: []string{"first", "second"}})
	require.NoError(t, err)
	require.Len(t, resp.Embeddings, 2)

	assert.Equal(t, []float32{1, 0}, resp.Embeddings[0].Vector)
	assert.Equal(t, []float32{0, 1}, resp.Embeddings[1].Vector)
}

func TestGenerateBatch_IndexlessResponseKeepsArrivalOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model": "test-model",
			"data": []map[string]interface{}{
				{"embedding": []float32{1, 0}},
				{"embedding": []float32{0, 1}},
			},
		})
	}))
	defer srv.Close()

	p := newTestHTTPProvider(srv.URL)
	resp, err := p.GenerateBatch(context.Background(), BatchEmbeddingRequest{Texts: []string{"first", "second"}})
	require.NoError(t, err)
	require.Len(t, resp.Embeddings, 2)

	assert.Equal(t, []float32{1, 0}, resp.Embeddings[0].Vector)
	assert.Equal(t, []float32{0, 1}, resp.Embeddings[1].Vector)
}

func TestGenerateBatch_CountMismatchRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model": "test-model",
			"data": []map[string]interface{}{
				{"embedding": []float32{1, 0}, "index": 0},
			},
		})
	}))
	defer srv.Close()

	p := newTestHTTPProvider(srv.URL)
	_, err := p.GenerateBatch(context.Background(), BatchEmbeddingRequest{Texts: []string{"first", "second"}})
	assert.ErrorIs(t, err, ErrProviderFailed)
}

func TestGenerateBatch_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	p := newTestHTTPProvider(srv.URL)
	_, err := p.GenerateBatch(context.Background(), BatchEmbeddingRequest{Texts: []string{"first"}})

	assert.ErrorIs(t, err, ErrProviderFailed)
	assert.Equal(t, int32(1), calls.Load())
}
