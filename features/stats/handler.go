// Package stats exposes a combined operational snapshot of the knowledge
// base and mood history.
package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"mindwell/backend/internal/middleware"
	"mindwell/backend/internal/rag"
)

type KnowledgeBase interface {
	Statistics(ctx context.Context) (rag.Stats, error)
}

type MoodStore interface {
	Count(ctx context.Context) (int, error)
}

type Handler struct {
	knowledge KnowledgeBase
	moods     MoodStore
}

func NewHandler(knowledge KnowledgeBase, moods MoodStore) *Handler {
	return &Handler{knowledge: knowledge, moods: moods}
}

type StatsResponse struct {
	TotalChunks        int            `json:"total_chunks"`
	EmbeddingDimension int            `json:"embedding_dimension"`
	IndexSize          int            `json:"index_size"`
	DocumentsBySource  map[string]int `json:"documents_by_source"`
	MoodEntries        int            `json:"mood_entries"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	slog.InfoContext(ctx, "getting stats", "correlationId", correlationID)

	kbStats, err := h.knowledge.Statistics(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get knowledge base stats", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to get knowledge base stats", http.StatusInternalServerError)
		return
	}

	moodCount, err := h.moods.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count mood entries", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count mood entries", http.StatusInternalServerError)
		return
	}

	resp := StatsResponse{
		TotalChunks:        kbStats.TotalChunks,
		EmbeddingDimension: kbStats.EmbeddingDimension,
		IndexSize:          kbStats.IndexSize,
		DocumentsBySource:  kbStats.DocumentsBySource,
		MoodEntries:        moodCount,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
