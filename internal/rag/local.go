package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"mindwell/backend/internal/vector"
)

const (
	indexFile    = "index.bin"
	chunksFile   = "document_chunks.json"
	metadataFile = "metadata.json"
)

type storeMetadata struct {
	EmbeddingDim int `json:"embedding_dim"`
	TotalChunks  int `json:"total_chunks"`
}

// LocalBackend pairs a flat inner-product index with the in-memory chunk
// registry. Position i in the index always resolves to chunks[i]; both
// structures are append-only and only ever rebuilt wholesale.
type LocalBackend struct {
	index  *vector.FlatIndex
	chunks []DocumentChunk
}

func NewLocalBackend() *LocalBackend {
	return &LocalBackend{index: vector.NewFlatIndex()}
}

func (b *LocalBackend) AddChunks(ctx context.Context, chunks []DocumentChunk) error {
	vectors := make([][]float32, len(chunks))
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: %s#%d", ErrMissingEmbedding, c.Source, c.ChunkID)
		}
		vectors[i] = c.Embedding
	}

	// Vectors first: FlatIndex.Add validates the whole batch before appending,
	// so a failure here leaves index and registry still aligned.
	if err := b.index.Add(vectors); err != nil {
		return err
	}
	b.chunks = append(b.chunks, chunks...)
	return nil
}

func (b *LocalBackend) Search(ctx context.Context, vec []float32, k int) ([]ScoredChunk, error) {
	hits, err := b.index.Search(vec, k)
	if err != nil {
		return nil, err
	}

	results := make([]ScoredChunk, 0, len(hits))
	for _, h := range hits {
		results = append(results, ScoredChunk{Chunk: b.chunks[h.Position], Score: h.Score})
	}
	return results, nil
}

func (b *LocalBackend) Count(ctx context.Context) (int, error) {
	return len(b.chunks), nil
}

func (b *LocalBackend) Stats(ctx context.Context) (Stats, error) {
	bySource := make(map[string]int)
	for _, c := range b.chunks {
		bySource[c.Source]++
	}
	return Stats{
		TotalChunks:        len(b.chunks),
		EmbeddingDimension: b.index.Dimension(),
		IndexSize:          b.index.Count(),
		DocumentsBySource:  bySource,
	}, nil
}

func (b *LocalBackend) Save(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	if err := b.index.Save(filepath.Join(dir, indexFile)); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	// The chunk registry is persisted positionally: entry i corresponds to
	// vector i in the index blob.
	data, err := json.MarshalIndent(b.chunks, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, chunksFile), data, 0o600); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}

	meta := storeMetadata{
		EmbeddingDim: b.index.Dimension(),
		TotalChunks:  len(b.chunks),
	}
	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), metaData, 0o600); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	return nil
}

func (b *LocalBackend) Load(ctx context.Context, dir string) (int, error) {
	index := vector.NewFlatIndex()
	if err := index.Load(filepath.Join(dir, indexFile)); err != nil {
		return 0, fmt.Errorf("load index: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, chunksFile))
	if err != nil {
		return 0, fmt.Errorf("load chunks: %w", err)
	}
	var chunks []DocumentChunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return 0, fmt.Errorf("load chunks: %w", err)
	}

	if len(chunks) != index.Count() {
		return 0, fmt.Errorf("%w: %d chunks vs %d vectors", ErrCorruptStore, len(chunks), index.Count())
	}

	// Embeddings travel in the index blob; reattach them so loaded chunks
	// satisfy the same invariant as freshly ingested ones.
	for i := range chunks {
		chunks[i].Embedding = index.Vector(i)
	}

	b.index = index
	b.chunks = chunks
	return len(chunks), nil
}
