// Package wellness wraps the retrieval store with mental-wellness specific
// behavior: query enhancement by topic, context formatting for the language
// model, and one-call initialization of the knowledge base.
package wellness

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"mindwell/backend/internal/rag"
)

const (
	// DefaultScoreThreshold filters weak matches during retrieval.
	DefaultScoreThreshold float32 = 0.05

	// DefaultTopK is the number of chunks handed to the language model.
	DefaultTopK = 3

	// snippetLimit caps how much of each chunk reaches the model prompt.
	snippetLimit = 300
)

// topicKeywords maps a detected conversation topic to terms appended during
// query enhancement. Only the first two terms of a bucket are candidates.
var topicKeywords = map[string][]string{
	"anxiety":    {"anxious", "worry", "panic", "nervous", "fear", "stress"},
	"depression": {"sad", "hopeless", "depressed", "down", "empty", "worthless"},
	"stress":     {"overwhelmed", "pressure", "tension", "burden", "exhausted"},
	"trauma":     {"ptsd", "flashback", "traumatic", "trigger", "abuse"},
	"therapy":    {"cbt", "counseling", "treatment", "therapeutic", "mindfulness"},
	"crisis":     {"suicide", "self-harm", "crisis", "emergency", "help"},
}

// Retriever is the slice of the store's surface the assistant needs.
type Retriever interface {
	AddDocuments(ctx context.Context, dir string) (int, error)
	Search(ctx context.Context, query string, k int, threshold float32) ([]rag.ScoredChunk, error)
	SaveIndex(ctx context.Context, dir string) error
	LoadIndex(ctx context.Context, dir string) (int, error)
	Stats(ctx context.Context) (rag.Stats, error)
}

// ContextChunk is one retrieved passage with its provenance.
type ContextChunk struct {
	Content        string         `json:"content"`
	Source         string         `json:"source"`
	RelevanceScore float32        `json:"relevance_score"`
	Metadata       map[string]any `json:"metadata"`
}

type Assistant struct {
	retriever    Retriever
	documentsDir string
	storePath    string
	threshold    float32
	topK         int
	queryLog     *rag.QueryLogger
}

type Option func(*Assistant)

// WithScoreThreshold overrides the retrieval score cutoff.
func WithScoreThreshold(threshold float32) Option {
	return func(a *Assistant) { a.threshold = threshold }
}

// WithTopK overrides how many chunks RetrieveContext returns by default.
func WithTopK(k int) Option {
	return func(a *Assistant) { a.topK = k }
}

// WithQueryLogger records every retrieval for offline analysis.
func WithQueryLogger(l *rag.QueryLogger) Option {
	return func(a *Assistant) { a.queryLog = l }
}

func NewAssistant(retriever Retriever, documentsDir, storePath string, opts ...Option) *Assistant {
	a := &Assistant{
		retriever:    retriever,
		documentsDir: documentsDir,
		storePath:    storePath,
		threshold:    DefaultScoreThreshold,
		topK:         DefaultTopK,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Initialize loads a previously saved knowledge base, or builds one from the
// documents directory when none exists. It reports whether the assistant has
// any retrievable content; a false return means retrieval will be skipped,
// not that the service is down.
func (a *Assistant) Initialize(ctx context.Context) bool {
	if _, err := os.Stat(a.storePath); err == nil {
		slog.InfoContext(ctx, "loading existing vector store", "path", a.storePath)
		if count, err := a.retriever.LoadIndex(ctx, a.storePath); err == nil && count > 0 {
			return true
		} else if err != nil {
			slog.WarnContext(ctx, "failed to load vector store, rebuilding", "error", err)
		}
	}

	slog.InfoContext(ctx, "building vector store from documents", "dir", a.documentsDir)
	if err := os.MkdirAll(a.storePath, 0o750); err != nil {
		slog.ErrorContext(ctx, "failed to create vector store directory", "error", err)
		return false
	}

	added, err := a.retriever.AddDocuments(ctx, a.documentsDir)
	if err != nil {
		slog.ErrorContext(ctx, "failed to ingest documents", "error", err)
		return false
	}
	if added == 0 {
		slog.ErrorContext(ctx, "no documents were processed successfully")
		return false
	}

	// A save failure costs a rebuild on next start, nothing more.
	if err := a.retriever.SaveIndex(ctx, a.storePath); err != nil {
		slog.WarnContext(ctx, "failed to save vector store", "error", err)
	}
	slog.InfoContext(ctx, "vector store built", "chunks", added)
	return true
}

// EnhanceQuery lowercases the query and appends the topic's two leading
// keywords, skipping any the query already contains. Later bucket entries are
// never candidates.
func (a *Assistant) EnhanceQuery(query, contextType string) string {
	enhanced := strings.ToLower(query)

	keywords := topicKeywords[strings.ToLower(contextType)]
	if len(keywords) > 2 {
		keywords = keywords[:2]
	}
	for _, keyword := range keywords {
		if !strings.Contains(enhanced, keyword) {
			enhanced += " " + keyword
		}
	}
	return enhanced
}

// RetrieveContext returns up to k passages relevant to the query. Retrieval
// failures degrade to an empty result so the conversation can continue
// without augmentation.
func (a *Assistant) RetrieveContext(ctx context.Context, query, contextType string, k int) []ContextChunk {
	if k <= 0 {
		k = a.topK
	}
	start := time.Now()

	enhanced := a.EnhanceQuery(query, contextType)
	results, err := a.retriever.Search(ctx, enhanced, k, a.threshold)
	if err != nil {
		slog.ErrorContext(ctx, "context retrieval failed", "error", err)
		results = nil
	}

	chunks := make([]ContextChunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, ContextChunk{
			Content:        r.Chunk.Content,
			Source:         r.Chunk.Source,
			RelevanceScore: r.Score,
			Metadata:       r.Chunk.Metadata,
		})
	}

	if a.queryLog != nil {
		a.queryLog.Log(rag.QueryLogEntry{
			Query:       query,
			ContextType: contextType,
			NumResults:  len(chunks),
			Duration:    time.Since(start),
		})
	}
	return chunks
}

// ResponseContext formats the top passages as a numbered block for the model
// prompt and reports how many passages it contains. An empty string means
// nothing relevant was found and the prompt should go out unaugmented.
func (a *Assistant) ResponseContext(ctx context.Context, query, contextType string) (string, int) {
	chunks := a.RetrieveContext(ctx, query, contextType, DefaultTopK)
	if len(chunks) == 0 {
		return "", 0
	}

	var b strings.Builder
	b.WriteString("Relevant information from mental wellness resources:\n\n")
	for i, chunk := range chunks {
		fmt.Fprintf(&b, "%d. From %s (relevance: %.2f):\n", i+1, chunk.Source, chunk.RelevanceScore)
		fmt.Fprintf(&b, "%s...\n\n", truncate(chunk.Content, snippetLimit))
	}
	return b.String(), len(chunks)
}

// Statistics reports the underlying store's shape.
func (a *Assistant) Statistics(ctx context.Context) (rag.Stats, error) {
	return a.retriever.Stats(ctx)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
