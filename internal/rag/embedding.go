package rag

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	ErrZeroVector       = errors.New("zero-magnitude embedding")
	ErrDimensionChanged = errors.New("embedding dimension changed")
	ErrBatchSize        = errors.New("provider returned wrong batch size")
)

// Provider produces raw embeddings for a batch of texts, one vector per text.
type Provider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingEngine turns text into unit-normalized vectors. The dimensionality
// is pinned by the first successful call and must stay constant for the
// process lifetime.
type EmbeddingEngine struct {
	provider Provider
	dim      int
}

func NewEmbeddingEngine(provider Provider) *EmbeddingEngine {
	return &EmbeddingEngine{provider: provider}
}

// Dimension returns the pinned dimensionality, or 0 before the first embed.
func (e *EmbeddingEngine) Dimension() int { return e.dim }

// Embed returns one L2-normalized vector per input text. Callers must pass
// non-empty texts; a degenerate zero vector is an error, not a silent NaN.
func (e *EmbeddingEngine) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	raw, err := e.provider.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	if len(raw) != len(texts) {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrBatchSize, len(texts), len(raw))
	}

	out := make([][]float32, len(raw))
	for i, vec := range raw {
		if e.dim == 0 {
			e.dim = len(vec)
		}
		if len(vec) != e.dim || e.dim == 0 {
			return nil, fmt.Errorf("%w: want %d, got %d", ErrDimensionChanged, e.dim, len(vec))
		}
		normalized, err := normalize(vec)
		if err != nil {
			return nil, err
		}
		out[i] = normalized
	}
	return out, nil
}

func normalize(vec []float32) ([]float32, error) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return nil, ErrZeroVector
	}

	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out, nil
}
