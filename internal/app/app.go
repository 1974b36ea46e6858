// Package app wires configuration, adapters, and features into a running
// HTTP service.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"mindwell/backend/features/chat"
	"mindwell/backend/features/mood"
	"mindwell/backend/features/stats"
	"mindwell/backend/internal/adapter/gemini"
	"mindwell/backend/internal/adapter/ollama"
	"mindwell/backend/internal/config"
	"mindwell/backend/internal/document"
	"mindwell/backend/internal/event"
	"mindwell/backend/internal/intent"
	"mindwell/backend/internal/middleware"
	"mindwell/backend/internal/rag"
	"mindwell/backend/internal/wellness"
)

type App struct {
	Handler   http.Handler
	Assistant *wellness.Assistant

	port    int
	emitter *event.Emitter
}

func New(
	cfg *config.Config,
	db *sql.DB,
	backend rag.Backend,
	producer event.Publisher,
) (*App, error) {
	ollamaClient := ollama.NewClient(cfg.OllamaHost, cfg.EmbeddingModel, cfg.GenerationModel)

	var provider rag.Provider = ollamaClient
	if cfg.EmbeddingProvider == "gemini" {
		embedder, err := gemini.NewEmbedder(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("gemini embedder error: %w", err)
		}
		provider = embedder
	}

	store := rag.NewStore(
		document.NewProcessor(),
		rag.NewTextChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		rag.NewEmbeddingEngine(provider),
		backend,
		cfg.MinDocumentChars,
	)

	queryLogger, err := rag.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = rag.NewQueryLogger(os.Stdout)
	}

	assistant := wellness.NewAssistant(store, cfg.DocumentsDir, cfg.VectorStorePath,
		wellness.WithScoreThreshold(cfg.ScoreThreshold),
		wellness.WithTopK(cfg.SearchTopK),
		wellness.WithQueryLogger(queryLogger),
	)

	var emitter *event.Emitter
	if producer != nil {
		emitter = event.NewEmitter(producer)
	}

	classifier := intent.NewClassifier()

	// Feature: Chat
	chatService := chat.NewService(classifier, assistant, ollamaClient, emitter)
	chatHandler := chat.NewHandler(chatService, classifier)

	// Feature: Mood
	moodRepo := mood.NewPostgresRepo(db)
	moodService := mood.NewService(moodRepo, emitter)
	moodHandler := mood.NewHandler(moodService)

	// Feature: Stats
	statsHandler := stats.NewHandler(assistant, moodService)

	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()

	mux.Handle("POST /chat", middleware.CorrelationID(enableCORS(chatHandler.Chat)))
	mux.Handle("POST /intent/classify", middleware.CorrelationID(enableCORS(chatHandler.Classify)))
	mux.Handle("GET /intents", middleware.CorrelationID(enableCORS(chatHandler.Intents)))

	mux.Handle("POST /mood", middleware.CorrelationID(enableCORS(moodHandler.Record)))
	mux.Handle("GET /analytics/{user_id}", middleware.CorrelationID(enableCORS(moodHandler.Analytics)))
	mux.Handle("GET /mood/summary", middleware.CorrelationID(enableCORS(moodHandler.Summary)))

	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{
		Handler:   mux,
		Assistant: assistant,
		port:      cfg.ServerPort,
		emitter:   emitter,
	}, nil
}

// InitializeKnowledgeBase loads or builds the vector store. The service still
// starts without it; chat degrades to unaugmented responses.
func (a *App) InitializeKnowledgeBase(ctx context.Context) {
	start := time.Now()
	if !a.Assistant.Initialize(ctx) {
		slog.WarnContext(ctx, "knowledge base unavailable, responses will not be augmented")
		return
	}

	if stats, err := a.Assistant.Statistics(ctx); err == nil {
		slog.InfoContext(ctx, "knowledge base ready",
			"chunks", stats.TotalChunks,
			"documents", len(stats.DocumentsBySource),
			"elapsed", time.Since(start))
		a.emitter.Emit(event.TopicIndexRebuilt, event.IndexRebuilt{
			Chunks:     stats.TotalChunks,
			Documents:  len(stats.DocumentsBySource),
			FinishedAt: time.Now(),
		})
	}
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
