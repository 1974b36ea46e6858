package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Generate(t *testing.T) {
	t.Run("Concatenates Streamed Chunks", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/generate", r.URL.Path)

			var req generateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "phi3:mini", req.Model)
			assert.Equal(t, "be kind", req.System)
			assert.True(t, req.Stream)

			enc := json.NewEncoder(w)
			require.NoError(t, enc.Encode(generateResponse{Response: "Take a slow "}))
			require.NoError(t, enc.Encode(generateResponse{Response: "breath.", Done: true}))
		}))
		defer server.Close()

		c := NewClient(server.URL, "nomic-embed-text", "phi3:mini")
		out, err := c.Generate(context.Background(), "be kind", "I feel overwhelmed")
		require.NoError(t, err)
		assert.Equal(t, "Take a slow breath.", out)
	})

	t.Run("Server Error Surfaces Status And Body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer server.Close()

		c := NewClient(server.URL, "nomic-embed-text", "missing:model")
		_, err := c.Generate(context.Background(), "", "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
		assert.Contains(t, err.Error(), "model not found")
	})
}

func TestClient_EmbedBatch(t *testing.T) {
	t.Run("One Call Per Text", func(t *testing.T) {
		var prompts []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/embeddings", r.URL.Path)

			var req embeddingRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "nomic-embed-text", req.Model)
			prompts = append(prompts, req.Prompt)

			require.NoError(t, json.NewEncoder(w).Encode(embeddingResponse{
				Embedding: []float32{0.1, 0.2, 0.3},
			}))
		}))
		defer server.Close()

		c := NewClient(server.URL, "nomic-embed-text", "phi3:mini")
		vecs, err := c.EmbedBatch(context.Background(), []string{"first", "second"})
		require.NoError(t, err)
		require.Len(t, vecs, 2)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, vecs[0])
		assert.Equal(t, []string{"first", "second"}, prompts)
	})

	t.Run("Empty Embedding Is An Error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewEncoder(w).Encode(embeddingResponse{}))
		}))
		defer server.Close()

		c := NewClient(server.URL, "nomic-embed-text", "phi3:mini")
		_, err := c.EmbedBatch(context.Background(), []string{"text"})
		assert.ErrorIs(t, err, ErrEmptyEmbedding)
	})

	t.Run("Defaults Base URL When Empty", func(t *testing.T) {
		c := NewClient("", "nomic-embed-text", "phi3:mini")
		assert.Equal(t, "http://localhost:11434", c.baseURL)
	})
}
