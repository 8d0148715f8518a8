// Package embedder generates vector embeddings for chunks and queries.
//
// Two remote providers (Jina AI and OpenAI, which share an API shape) and a
// deterministic local provider implement the Embedder interface. Selection
// is environment-driven: CODECTX_EMBEDDING_PROVIDER wins, otherwise the
// first available API key, otherwise the local provider.
//
// Remote calls are batched, retried with exponential backoff, and cached in
// an in-memory LRU keyed by content hash. Batch responses preserve input
// order, which the pipeline relies on for deterministic chunk/vector
// pairing.
//
// Signature(e) identifies a provider configuration
// ("provider/model@dimension"); the persisted index stores it and rejects
// caches written by a different configuration, since vectors from different
// providers are not comparable.
package embedder
