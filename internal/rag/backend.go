package rag

import (
	"context"
	"errors"
)

var (
	ErrMissingEmbedding = errors.New("chunk has no embedding")
	ErrCorruptStore     = errors.New("corrupt persisted store")
)

// Backend holds embedded chunks and answers nearest-neighbor queries. The
// local backend keeps everything in process and persists to disk; the
// Weaviate backend delegates storage to the server.
type Backend interface {
	// AddChunks appends chunks, each of which must already carry its
	// embedding. Chunks and vectors are stored together, atomically from the
	// caller's perspective.
	AddChunks(ctx context.Context, chunks []DocumentChunk) error

	// Search returns up to k chunks nearest to vector by inner product,
	// best first. An empty backend yields an empty result.
	Search(ctx context.Context, vector []float32, k int) ([]ScoredChunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Stats summarizes the stored chunks for observability.
	Stats(ctx context.Context) (Stats, error)

	// Save persists backend state under dir. Backends with server-side
	// persistence treat this as a no-op.
	Save(ctx context.Context, dir string) error

	// Load restores backend state from dir and returns the number of chunks
	// available afterwards.
	Load(ctx context.Context, dir string) (int, error)
}
