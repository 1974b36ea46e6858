// Package weaviate implements a chunk storage backend on a Weaviate server,
// for deployments where the knowledge base outgrows a single process.
package weaviate

import (
	"context"
	"fmt"
	"strconv"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"mindwell/backend/internal/rag"
)

const className = "WellnessChunk"

type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

// EnsureSchema creates the chunk class if missing and backfills any
// properties added since the class was first created.
func (s *Store) EnsureSchema(ctx context.Context) error {
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(className).Do(ctx)
	if err != nil {
		return err
	}

	properties := []*models.Property{
		{Name: "content", DataType: []string{"text"}},
		{Name: "source", DataType: []string{"string"}},
		{Name: "chunkIndex", DataType: []string{"int"}},
		{Name: "chunkType", DataType: []string{"string"}},
		{Name: "length", DataType: []string{"int"}},
	}

	if !exists {
		class := &models.Class{
			Class:       className,
			Description: "A chunk of a mental wellness document",
			Vectorizer:  "none",
			Properties:  properties,
		}
		return s.client.Schema().ClassCreator().WithClass(class).Do(ctx)
	}

	class, err := s.client.Schema().ClassGetter().WithClassName(className).Do(ctx)
	if err != nil {
		return err
	}

	existing := make(map[string]bool)
	for _, p := range class.Properties {
		existing[p.Name] = true
	}
	for _, p := range properties {
		if !existing[p.Name] {
			creator := s.client.Schema().PropertyCreator().WithClassName(className).WithProperty(p)
			if err := creator.Do(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) AddChunks(ctx context.Context, chunks []rag.DocumentChunk) error {
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return rag.ErrMissingEmbedding
		}
	}
	for _, chunk := range chunks {
		_, err := s.client.Data().Creator().
			WithClassName(className).
			WithProperties(map[string]interface{}{
				"content":    chunk.Content,
				"source":     chunk.Source,
				"chunkIndex": chunk.ChunkID,
				"chunkType":  metadataString(chunk.Metadata, "type"),
				"length":     len(chunk.Content),
			}).
			WithVector(chunk.Embedding).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to store chunk %d from %s: %w", chunk.ChunkID, chunk.Source, err)
		}
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]rag.ScoredChunk, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "source"},
		{Name: "chunkIndex"},
		{Name: "chunkType"},
		{Name: "length"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(className).
		WithNearVector(nearVector).
		WithLimit(k).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var results []rag.ScoredChunk
	data, ok := res.Data["Get"].(map[string]interface{})
	if !ok {
		return results, nil
	}
	objects, ok := data[className].([]interface{})
	if !ok {
		return results, nil
	}

	for _, obj := range objects {
		props, ok := obj.(map[string]interface{})
		if !ok {
			continue
		}

		chunk := rag.DocumentChunk{Metadata: make(map[string]any)}
		if content, ok := props["content"].(string); ok {
			chunk.Content = content
		}
		if source, ok := props["source"].(string); ok {
			chunk.Source = source
		}
		if idx, ok := props["chunkIndex"].(float64); ok {
			chunk.ChunkID = int(idx)
		}
		if chunkType, ok := props["chunkType"].(string); ok {
			chunk.Metadata["type"] = chunkType
		}
		if length, ok := props["length"].(float64); ok {
			chunk.Metadata["length"] = int(length)
		}

		var score float32
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			// Weaviate reports certainty in [0,1]; map it back to cosine
			// similarity in [-1,1].
			switch c := additional["certainty"].(type) {
			case float64:
				score = float32(2*c - 1)
			case string:
				if f, err := strconv.ParseFloat(c, 64); err == nil {
					score = float32(2*f - 1)
				}
			}
		}

		results = append(results, rag.ScoredChunk{Chunk: chunk, Score: score})
	}
	return results, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	res, err := s.client.GraphQL().Aggregate().
		WithClassName(className).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("graphql error: %v", res.Errors)
	}

	data, ok := res.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	groups, ok := data[className].([]interface{})
	if !ok || len(groups) == 0 {
		return 0, nil
	}
	group, ok := groups[0].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	meta, ok := group["meta"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	count, _ := meta["count"].(float64)
	return int(count), nil
}

func (s *Store) Stats(ctx context.Context) (rag.Stats, error) {
	total, err := s.Count(ctx)
	if err != nil {
		return rag.Stats{}, err
	}

	stats := rag.Stats{
		TotalChunks:       total,
		IndexSize:         total,
		DocumentsBySource: make(map[string]int),
	}

	res, err := s.client.GraphQL().Aggregate().
		WithClassName(className).
		WithGroupBy("source").
		WithFields(
			graphql.Field{Name: "groupedBy", Fields: []graphql.Field{{Name: "value"}}},
			graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}},
		).
		Do(ctx)
	if err != nil {
		return rag.Stats{}, err
	}
	if len(res.Errors) > 0 {
		return rag.Stats{}, fmt.Errorf("graphql error: %v", res.Errors)
	}

	data, ok := res.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return stats, nil
	}
	groups, ok := data[className].([]interface{})
	if !ok {
		return stats, nil
	}
	for _, g := range groups {
		group, ok := g.(map[string]interface{})
		if !ok {
			continue
		}
		groupedBy, ok := group["groupedBy"].(map[string]interface{})
		if !ok {
			continue
		}
		source, ok := groupedBy["value"].(string)
		if !ok {
			continue
		}
		if meta, ok := group["meta"].(map[string]interface{}); ok {
			if count, ok := meta["count"].(float64); ok {
				stats.DocumentsBySource[source] = int(count)
			}
		}
	}
	return stats, nil
}

// Save is a no-op: Weaviate persists server-side.
func (s *Store) Save(ctx context.Context, dir string) error {
	return nil
}

// Load reports how many chunks the server already holds.
func (s *Store) Load(ctx context.Context, dir string) (int, error) {
	return s.Count(ctx)
}

func metadataString(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	v, _ := metadata[key].(string)
	return v
}
