package civdoc

import "context"

// EmbedMaxChars is the character cap applied to embedding input. Longer
// text is truncated before hashing and caching, so inputs identical after
// truncation share one cache entry and one remote call.
const EmbedMaxChars = 30000

// Embedder computes a fixed-length embedding vector for a piece of text.
type Embedder interface {
	// Embed returns the EmbedDims-length vector for text.
	// Returns EINVALID if the trimmed text is empty and EEXTERNAL if the
	// remote API response lacks the expected vector field.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Cache stores raw embedding API responses keyed by content hash. Writes
// are best-effort: a cache failure must never abort an ingestion run.
// Entries never expire explicitly; retention is the backend's concern.
type Cache interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores the value under key.
	Set(ctx context.Context, key string, value []byte) error
}
