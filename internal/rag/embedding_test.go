package rag

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider maps texts onto a tiny keyword-count vector space so tests get
// deterministic, semantically plausible embeddings without a model.
type stubProvider struct {
	err error
}

var stubVocabulary = []string{"anxiety", "panic", "sleep", "work", "stress"}

func (p *stubProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if p.err != nil {
		return nil, p.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		lower := strings.ToLower(t)
		vec := make([]float32, len(stubVocabulary)+1)
		for j, word := range stubVocabulary {
			vec[j] = float32(strings.Count(lower, word))
		}
		// Bias component keeps every vector non-zero.
		vec[len(stubVocabulary)] = 0.1
		out[i] = vec
	}
	return out, nil
}

type zeroProvider struct{}

func (zeroProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, 4)
	}
	return out, nil
}

func TestEmbeddingEngine_Normalization(t *testing.T) {
	e := NewEmbeddingEngine(&stubProvider{})

	vecs, err := e.Embed(context.Background(), []string{
		"anxiety and panic at work",
		"sleep hygiene",
		"plain text without vocabulary",
	})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	for _, v := range vecs {
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
	}
}

func TestEmbeddingEngine_DimensionPinned(t *testing.T) {
	e := NewEmbeddingEngine(&stubProvider{})
	assert.Equal(t, 0, e.Dimension())

	_, err := e.Embed(context.Background(), []string{"anything"})
	require.NoError(t, err)
	assert.Equal(t, len(stubVocabulary)+1, e.Dimension())
}

func TestEmbeddingEngine_EmptyBatch(t *testing.T) {
	e := NewEmbeddingEngine(&stubProvider{})
	vecs, err := e.Embed(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestEmbeddingEngine_ProviderError(t *testing.T) {
	wantErr := errors.New("model unavailable")
	e := NewEmbeddingEngine(&stubProvider{err: wantErr})

	_, err := e.Embed(context.Background(), []string{"text"})
	assert.True(t, errors.Is(err, wantErr))
}

func TestEmbeddingEngine_ZeroVector(t *testing.T) {
	e := NewEmbeddingEngine(zeroProvider{})

	_, err := e.Embed(context.Background(), []string{"degenerate"})
	assert.True(t, errors.Is(err, ErrZeroVector))
}
