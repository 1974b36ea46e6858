package rag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"mindwell/backend/internal/document"
)

const DefaultMinContentChars = 50

// Store orchestrates ingestion (process, chunk, embed, index) and query
// (embed, search). Ingestion is expected to run to completion before the
// store is exposed to queries; only the ingestion path mutates the backend.
type Store struct {
	processor       *document.Processor
	chunker         *TextChunker
	engine          *EmbeddingEngine
	backend         Backend
	minContentChars int
}

func NewStore(processor *document.Processor, chunker *TextChunker, engine *EmbeddingEngine, backend Backend, minContentChars int) *Store {
	if minContentChars <= 0 {
		minContentChars = DefaultMinContentChars
	}
	return &Store{
		processor:       processor,
		chunker:         chunker,
		engine:          engine,
		backend:         backend,
		minContentChars: minContentChars,
	}
}

// AddDocuments ingests every supported file directly under dir and returns
// the number of chunks added. A single file's failure is logged and skipped;
// a missing directory is the one hard error, since it means no knowledge base
// can be built at all.
func (s *Store) AddDocuments(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("documents directory: %w", err)
	}

	added := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := filepath.Join(dir, name)

		slog.InfoContext(ctx, "processing document", "file", name)

		content := s.processor.Process(path)
		if n := utf8.RuneCountInString(strings.TrimSpace(content)); n < s.minContentChars {
			slog.WarnContext(ctx, "insufficient content, skipping", "file", name, "chars", n)
			continue
		}

		chunks := s.chunker.Chunk(content, name)
		if len(chunks) == 0 {
			slog.WarnContext(ctx, "no chunks created, skipping", "file", name)
			continue
		}

		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}

		embeddings, err := s.engine.Embed(ctx, texts)
		if err != nil {
			// Abandon this document's chunks; other documents proceed.
			slog.ErrorContext(ctx, "embedding failed, skipping document", "file", name, "error", err)
			continue
		}

		for i := range chunks {
			chunks[i].Embedding = embeddings[i]
		}

		if err := s.backend.AddChunks(ctx, chunks); err != nil {
			slog.ErrorContext(ctx, "storing chunks failed, skipping document", "file", name, "error", err)
			continue
		}

		added += len(chunks)
		slog.InfoContext(ctx, "document ingested", "file", name, "chunks", len(chunks))
	}

	slog.InfoContext(ctx, "ingestion complete", "chunks_added", added, "files_seen", len(entries))
	return added, nil
}

// Search embeds the query and returns up to k chunks scoring at or above
// threshold. When the backend is non-empty but nothing clears the threshold,
// the single best match is returned anyway: some context beats none in a
// conversational setting. An empty backend yields an empty result.
func (s *Store) Search(ctx context.Context, query string, k int, threshold float32) ([]ScoredChunk, error) {
	count, err := s.backend.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		slog.WarnContext(ctx, "no documents in vector store")
		return nil, nil
	}

	vecs, err := s.engine.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	if k > count {
		k = count
	}
	candidates, err := s.backend.Search(ctx, vecs[0], k)
	if err != nil {
		return nil, err
	}

	results := make([]ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		if c.Score >= threshold {
			results = append(results, c)
		}
	}

	if len(results) == 0 && len(candidates) > 0 {
		slog.InfoContext(ctx, "no results above threshold, returning top match",
			"threshold", threshold, "top_score", candidates[0].Score)
		results = append(results, candidates[0])
	}

	return results, nil
}

// SaveIndex persists the backend under dir.
func (s *Store) SaveIndex(ctx context.Context, dir string) error {
	if err := s.backend.Save(ctx, dir); err != nil {
		return err
	}
	slog.InfoContext(ctx, "vector store saved", "path", dir)
	return nil
}

// LoadIndex restores the backend from dir and returns the chunk count.
func (s *Store) LoadIndex(ctx context.Context, dir string) (int, error) {
	count, err := s.backend.Load(ctx, dir)
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "vector store loaded", "path", dir, "chunks", count)
	return count, nil
}

// Stats reports the backend's current shape.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	return s.backend.Stats(ctx)
}
