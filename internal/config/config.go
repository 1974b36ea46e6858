package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

var ErrInvalidValue = errors.New("invalid configuration value")

type Config struct {
	// Knowledge base
	DocumentsDir    string `envconfig:"DOCUMENTS_DIR" default:"./documents"`
	VectorStorePath string `envconfig:"VECTOR_STORE_PATH" default:"./data/vector_store"`

	// Chunking
	ChunkSize        int `envconfig:"CHUNK_SIZE" default:"500"`
	ChunkOverlap     int `envconfig:"CHUNK_OVERLAP" default:"50"`
	MinDocumentChars int `envconfig:"MIN_DOCUMENT_CHARS" default:"50"`

	// Retrieval
	ScoreThreshold float32 `envconfig:"RAG_SCORE_THRESHOLD" default:"0.05"`
	SearchTopK     int     `envconfig:"SEARCH_TOP_K" default:"3"`

	// Embedding and generation
	EmbeddingProvider string `envconfig:"EMBEDDING_PROVIDER" default:"ollama"`
	OllamaHost        string `envconfig:"OLLAMA_HOST" default:"http://localhost:11434"`
	EmbeddingModel    string `envconfig:"EMBEDDING_MODEL" default:"nomic-embed-text"`
	GenerationModel   string `envconfig:"GENERATION_MODEL" default:"phi3:mini"`
	GeminiAPIKey      string `envconfig:"GEMINI_API_KEY"`

	// Vector backend
	VectorBackend  string `envconfig:"VECTOR_BACKEND" default:"local"`
	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	// Mood telemetry database
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"mindwell"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"mindwell"`

	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Events
	EnableEvents bool   `envconfig:"ENABLE_EVENTS" default:"false"`
	NSQDHost     string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP     string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`

	// Server
	ServerPort   int    `envconfig:"SERVER_PORT" default:"8081"`
	QueryLogPath string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root.
	// Ignore errors, as env vars might be set in the shell.
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DocumentsDir == "" {
		return fmt.Errorf("%w: DOCUMENTS_DIR", ErrMissingRequired)
	}
	if c.VectorStorePath == "" {
		return fmt.Errorf("%w: VECTOR_STORE_PATH", ErrMissingRequired)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: CHUNK_SIZE must be positive", ErrInvalidValue)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be smaller than CHUNK_SIZE", ErrInvalidValue)
	}
	switch c.EmbeddingProvider {
	case "ollama", "gemini":
	default:
		return fmt.Errorf("%w: EMBEDDING_PROVIDER must be ollama or gemini", ErrInvalidValue)
	}
	if c.EmbeddingProvider == "gemini" && c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingRequired)
	}
	switch c.VectorBackend {
	case "local", "weaviate":
	default:
		return fmt.Errorf("%w: VECTOR_BACKEND must be local or weaviate", ErrInvalidValue)
	}
	return nil
}
